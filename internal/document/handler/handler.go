// Package handler wires the document endpoints to the document registry.
// Uploads are multipart with the file under the "file" field.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"admitly/internal/document"
	id "admitly/pkg/domain"
	dErrors "admitly/pkg/domain-errors"
	"admitly/pkg/platform/httputil"
	"admitly/pkg/requestcontext"
)

// Service defines the registry operations the handler needs.
type Service interface {
	Attach(ctx context.Context, caller id.Caller, appID id.ApplicationID, meta document.FileMeta, data io.Reader) (*document.Document, error)
	Remove(ctx context.Context, caller id.Caller, appID id.ApplicationID, docID id.DocumentID) error
	ResolveDownload(ctx context.Context, caller id.Caller, appID id.ApplicationID, docID id.DocumentID) (document.Descriptor, error)
	List(ctx context.Context, caller id.Caller, appID id.ApplicationID) ([]document.WithDescriptor, error)
}

// Handler wires document endpoints to the registry.
type Handler struct {
	service  Service
	maxBytes int64
	logger   *slog.Logger
}

func New(service Service, maxBytes int64, logger *slog.Logger) *Handler {
	return &Handler{service: service, maxBytes: maxBytes, logger: logger}
}

// Register mounts document endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications/{id}/documents", h.HandleAttach)
	r.Get("/applications/{id}/documents", h.HandleList)
	r.Get("/applications/{id}/documents/{docID}/download", h.HandleResolveDownload)
	r.Delete("/applications/{id}/documents/{docID}", h.HandleRemove)
}

// HandleAttach handles POST /applications/{id}/documents.
func (h *Handler) HandleAttach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}

	// The registry enforces the precise per-file ceiling; this caps the
	// whole request body including multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeFileTooLarge, "file exceeds the upload size limit"))
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart upload with a 'file' field is required"))
		return
	}
	defer file.Close()

	meta := document.FileMeta{
		FileName: header.Filename,
		FileType: header.Header.Get("Content-Type"),
	}

	doc, err := h.service.Attach(ctx, caller, appID, meta, file)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document attached",
		"request_id", requestcontext.RequestID(ctx),
		"application_id", appID.String(),
		"document_id", doc.ID.String(),
		"file_type", doc.FileType,
		"file_size", doc.FileSize,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromDocument(doc))
}

// HandleList handles GET /applications/{id}/documents.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}

	docs, err := h.service.List(ctx, caller, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"documents": fromList(docs),
	})
}

// HandleResolveDownload handles GET /applications/{id}/documents/{docID}/download.
func (h *Handler) HandleResolveDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}
	docID, ok := h.docID(w, r)
	if !ok {
		return
	}

	desc, err := h.service.ResolveDownload(ctx, caller, appID, docID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, descriptorResponse{
		URL:       desc.URL,
		FileName:  desc.FileName,
		FileType:  desc.FileType,
		ExpiresAt: desc.ExpiresAt,
	})
}

// HandleRemove handles DELETE /applications/{id}/documents/{docID}.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}
	docID, ok := h.docID(w, r)
	if !ok {
		return
	}

	if err := h.service.Remove(ctx, caller, appID, docID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type documentResponse struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	FileName      string    `json:"file_name"`
	FileType      string    `json:"file_type"`
	FileSize      int64     `json:"file_size"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

type descriptorResponse struct {
	URL       string    `json:"url"`
	FileName  string    `json:"file_name"`
	FileType  string    `json:"file_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

type listEntry struct {
	documentResponse
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func fromDocument(doc *document.Document) documentResponse {
	return documentResponse{
		ID:            doc.ID.String(),
		ApplicationID: doc.ApplicationID.String(),
		FileName:      doc.FileName,
		FileType:      doc.FileType,
		FileSize:      doc.FileSize,
		UploadedAt:    doc.UploadedAt,
	}
}

func fromList(docs []document.WithDescriptor) []listEntry {
	out := make([]listEntry, 0, len(docs))
	for _, entry := range docs {
		out = append(out, listEntry{
			documentResponse: fromDocument(entry.Document),
			URL:              entry.Descriptor.URL,
			ExpiresAt:        entry.Descriptor.ExpiresAt,
		})
	}
	return out
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (id.Caller, bool) {
	caller := requestcontext.Caller(r.Context())
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.Caller{}, false
	}
	return caller, true
}

func (h *Handler) appID(w http.ResponseWriter, r *http.Request) (id.ApplicationID, bool) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "application not found"))
		return id.ApplicationID{}, false
	}
	return appID, true
}

func (h *Handler) docID(w http.ResponseWriter, r *http.Request) (id.DocumentID, bool) {
	docID, err := id.ParseDocumentID(chi.URLParam(r, "docID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "document not found"))
		return id.DocumentID{}, false
	}
	return docID, true
}
