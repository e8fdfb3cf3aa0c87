// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// DOCUMENT STATUS
// =============================================================================

// DocumentStatus is the backend's ingestion state for a knowledge-base
// document. "uploaded" and "processing" are transient; "processed" and
// "failed" are terminal.
type DocumentStatus string

const (
	DocStatusUploaded   DocumentStatus = "uploaded"
	DocStatusProcessing DocumentStatus = "processing"
	DocStatusProcessed  DocumentStatus = "processed"
	DocStatusFailed     DocumentStatus = "failed"
)

// String returns the string representation of the status.
func (s DocumentStatus) String() string {
	return string(s)
}

// IsTerminal reports whether ingestion has finished (successfully or not).
func (s DocumentStatus) IsTerminal() bool {
	return s == DocStatusProcessed || s == DocStatusFailed
}

// =============================================================================
// DOCUMENT TYPE
// =============================================================================

// Document is a knowledge-base document record.
type Document struct {
	ID               string         `json:"id"`
	OriginalFilename string         `json:"original_filename"`
	CustomFilename   string         `json:"custom_filename,omitempty"`
	Status           DocumentStatus `json:"status"`
	// ChunkCount is meaningful only when Status == processed.
	ChunkCount int       `json:"chunk_count"`
	SizeBytes  int64     `json:"size_bytes,omitempty"`
	UploadedBy string    `json:"uploaded_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DisplayName prefers the user-assigned name over the original filename.
func (d Document) DisplayName() string {
	if d.CustomFilename != "" {
		return d.CustomFilename
	}
	return d.OriginalFilename
}

// UploadResult is the backend's response to a document upload. The document
// id doubles as the ingestion task id; status "processing" means ingestion
// is asynchronous and must be polled. TaskID is filled by older backends
// that report the task separately.
type UploadResult struct {
	DocumentID string         `json:"document_id"`
	TaskID     string         `json:"task_id,omitempty"`
	Status     DocumentStatus `json:"status"`
	Message    string         `json:"message,omitempty"`
}

// IngestionID returns the id to poll for this upload.
func (r UploadResult) IngestionID() string {
	if r.DocumentID != "" {
		return r.DocumentID
	}
	return r.TaskID
}

// TaskStatus is the backend's report on an ingestion task.
type TaskStatus struct {
	TaskID     string         `json:"task_id"`
	DocumentID string         `json:"document_id"`
	Filename   string         `json:"filename"`
	Status     DocumentStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
}

// =============================================================================
// AGENT / PERSONA
// =============================================================================

// DefaultAgentType is the well-known fallback persona. Bootstrap degrades to
// it whenever the agent list cannot be fetched, so agent selection is never
// undefined.
const DefaultAgentType = "default"

// Agent describes an assistant persona offered by the backend.
type Agent struct {
	AgentType   string `json:"agent_type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// FallbackAgent returns the persona used when the agent list is unavailable.
func FallbackAgent() Agent {
	return Agent{
		AgentType:   DefaultAgentType,
		Name:        "Default",
		Description: "General-purpose teaching assistant",
	}
}

// =============================================================================
// USER
// =============================================================================

// User is the authenticated user's profile record.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// =============================================================================
// METRICS & STATS
// =============================================================================

// RAGMetrics is the knowledge-base metrics payload. AvgResponseTime is in
// seconds; CacheHitRate and ErrorRate are fractions in [0, 1].
type RAGMetrics struct {
	TotalQueries       int     `json:"total_queries"`
	CacheHitRate       float64 `json:"cache_hit_rate"`
	ErrorRate          float64 `json:"error_rate"`
	AvgResponseTime    float64 `json:"avg_response_time"`
	VectorDBSize       int     `json:"vector_db_size"`
	DocumentCount      int     `json:"document_count"`
	TotalDocuments     int     `json:"total_documents"`
	DocumentChunkCount int     `json:"document_chunks_count"`
}

// AgentUsage is one row of per-persona message counts.
type AgentUsage struct {
	AgentType    string `json:"agent_type"`
	MessageCount int    `json:"message_count"`
}

// DashboardStats is the admin dashboard payload.
type DashboardStats struct {
	TotalUsers         int          `json:"total_users"`
	TotalMessages      int          `json:"total_messages"`
	TotalConversations int          `json:"total_conversations"`
	AgentUsage         []AgentUsage `json:"agent_usage"`
}

// RelevantChunk is one retrieved passage from a knowledge-base query.
type RelevantChunk struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

// QueryResult is the knowledge-base Q&A response.
type QueryResult struct {
	Answer         string          `json:"answer"`
	RelevantChunks []RelevantChunk `json:"relevant_chunks"`
}
