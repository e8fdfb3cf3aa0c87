// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs manages the knowledge-base document lifecycle on the client
// side: upload validation, the ingestion-task poller, and the optional
// watch-directory auto-uploader.
package docs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/askveta/veta-tui/internal/api"
	"github.com/askveta/veta-tui/internal/model"
)

// =============================================================================
// UPLOAD VALIDATION
// =============================================================================

// DefaultMaxUploadBytes is the client-side upload cap.
const DefaultMaxUploadBytes = 10 * 1024 * 1024 // 10MB

// allowedExtensions is the ingestion allow-list. Checked case-insensitively
// before any network request.
var allowedExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".docx": true,
	".md":   true,
}

var (
	// ErrUnsupportedType indicates a file extension outside the allow-list.
	ErrUnsupportedType = errors.New("unsupported file type (allowed: .txt, .pdf, .docx, .md)")

	// ErrFileTooLarge indicates the file exceeds the upload cap.
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")

	// ErrDocumentProcessing indicates a mutation was refused because the
	// document is still being ingested.
	ErrDocumentProcessing = errors.New("document is still processing")
)

// ValidateFile checks extension and size before any network traffic.
// An invalid file yields a validation error and zero requests.
func ValidateFile(path string, maxBytes int64) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot upload a directory: %s", path)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if info.Size() > maxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, info.Size(), maxBytes)
	}
	return nil
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is the client-side view of the knowledge base. It validates and
// performs uploads, tracks local document state, and feeds accepted async
// ingestions to the poller.
type Registry struct {
	mu sync.Mutex

	client   *api.Client
	maxBytes int64

	documents []model.Document
	poller    *Poller
}

// NewRegistry creates a registry. poller may be nil when polling is driven
// elsewhere (CLI one-shot commands).
func NewRegistry(client *api.Client, poller *Poller, maxBytes int64) *Registry {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Registry{
		client:   client,
		maxBytes: maxBytes,
		poller:   poller,
	}
}

// Documents returns the cached document list.
func (r *Registry) Documents() []model.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Document, len(r.documents))
	copy(out, r.documents)
	return out
}

// Refresh refetches the document list from the backend.
func (r *Registry) Refresh(ctx context.Context) error {
	docs, err := r.client.ListDocuments(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.documents = docs
	r.mu.Unlock()
	return nil
}

// Upload validates path locally, then uploads it. Validation failures
// produce zero network requests; a valid file produces exactly one upload
// request. A "processing" result is handed to the poller.
func (r *Registry) Upload(ctx context.Context, path string) (*model.UploadResult, error) {
	if err := ValidateFile(path, r.maxBytes); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	result, err := r.client.UploadDocument(ctx, filepath.Base(path), f)
	if err != nil {
		return nil, err
	}

	if result.Status == model.DocStatusProcessing && result.IngestionID() != "" && r.poller != nil {
		r.poller.Track(result.IngestionID())
	}
	return result, nil
}

// Delete removes a document. Refused client-side while the local status is
// processing; otherwise one request, reported once on failure.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.refuseWhileProcessing(id); err != nil {
		return err
	}
	if err := r.client.DeleteDocument(ctx, id); err != nil {
		return err
	}
	r.mu.Lock()
	for i, d := range r.documents {
		if d.ID == id {
			r.documents = append(r.documents[:i], r.documents[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	return nil
}

// Rename sets a document's display name. Same processing guard as Delete.
func (r *Registry) Rename(ctx context.Context, id, customFilename string) error {
	if err := r.refuseWhileProcessing(id); err != nil {
		return err
	}
	if err := r.client.RenameDocument(ctx, id, customFilename); err != nil {
		return err
	}
	r.mu.Lock()
	for i := range r.documents {
		if r.documents[i].ID == id {
			r.documents[i].CustomFilename = customFilename
			break
		}
	}
	r.mu.Unlock()
	return nil
}

// refuseWhileProcessing blocks mutations of documents mid-ingestion.
func (r *Registry) refuseWhileProcessing(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.documents {
		if d.ID == id && (d.Status == model.DocStatusProcessing || d.Status == model.DocStatusUploaded) {
			return fmt.Errorf("%w: %s", ErrDocumentProcessing, d.DisplayName())
		}
	}
	return nil
}
