// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/askveta/veta-tui/internal/model"
)

// =============================================================================
// KNOWLEDGE-BASE QUERY
// =============================================================================

// QueryRequest is the RAG question payload.
type QueryRequest struct {
	Question       string `json:"question"`
	TopK           int    `json:"top_k,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Query asks a question against the knowledge base.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*model.QueryResult, error) {
	var result model.QueryResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/rag/query", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// documentList is the wire envelope of the document listing endpoints.
type documentList struct {
	Documents []model.Document `json:"documents"`
}

// ListDocuments returns the user's knowledge-base documents.
func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	var wire documentList
	if err := c.doJSON(ctx, http.MethodGet, "/api/rag/documents", nil, &wire); err != nil {
		return nil, err
	}
	return wire.Documents, nil
}

// UploadDocument uploads one file for ingestion. Validation (extension,
// size) happens in the docs package before this is called; this method
// issues exactly one request.
func (c *Client) UploadDocument(ctx context.Context, filename string, content io.Reader) (*model.UploadResult, error) {
	var result model.UploadResult
	err := c.doMultipart(ctx, "/api/rag/documents/upload", "file", filename, content, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteDocument removes a document and its chunks.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	path := "/api/rag/documents/" + url.PathEscape(id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// RenameDocument sets a document's display name.
func (c *Client) RenameDocument(ctx context.Context, id, customFilename string) error {
	path := "/api/rag/documents/" + url.PathEscape(id) + "/rename"
	body := map[string]string{"custom_filename": customFilename}
	return c.doJSON(ctx, http.MethodPut, path, body, nil)
}

// =============================================================================
// INGESTION TASKS
// =============================================================================

// TaskStatus reports an ingestion task's state. Used by the 5-second poller.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (*model.TaskStatus, error) {
	var status model.TaskStatus
	path := "/api/rag/tasks/" + url.PathEscape(taskID) + "/status"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// =============================================================================
// METRICS
// =============================================================================

// Metrics returns knowledge-base usage metrics.
func (c *Client) Metrics(ctx context.Context) (*model.RAGMetrics, error) {
	var metrics model.RAGMetrics
	if err := c.doJSON(ctx, http.MethodGet, "/api/rag/metrics", nil, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// AdminListDocuments returns all documents across users (admin only).
func (c *Client) AdminListDocuments(ctx context.Context) ([]model.Document, error) {
	var wire documentList
	if err := c.doJSON(ctx, http.MethodGet, "/api/rag/admin/documents", nil, &wire); err != nil {
		return nil, err
	}
	return wire.Documents, nil
}

// AdminDeleteDocument removes any user's document (admin only).
func (c *Client) AdminDeleteDocument(ctx context.Context, id string) error {
	path := "/api/rag/admin/documents/" + url.PathEscape(id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// RepairVectorDB asks the backend to rebuild its vector index from stored
// documents (admin only). Long-running; honor the caller's context.
func (c *Client) RepairVectorDB(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/rag/admin/repair_vector_db", nil, nil)
}
