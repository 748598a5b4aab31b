// Package handler serves the signed download links. The route skips bearer
// auth: possession of an unexpired token is the credential.
package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"admitly/internal/blob"
	dErrors "admitly/pkg/domain-errors"
	"admitly/pkg/platform/httputil"
	"admitly/pkg/requestcontext"
)

// Handler streams stored blobs for valid download tokens.
type Handler struct {
	resolver blob.Resolver
	store    blob.Store
	logger   *slog.Logger
}

func New(resolver blob.Resolver, store blob.Store, logger *slog.Logger) *Handler {
	return &Handler{resolver: resolver, store: store, logger: logger}
}

// Register mounts the download endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/files/{token}", h.HandleDownload)
}

// HandleDownload handles GET /files/{token}.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := chi.URLParam(r, "token")
	if token == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "file not found"))
		return
	}

	key, err := h.resolver.Resolve(ctx, token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rc, err := h.store.Open(ctx, key)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Cache-Control", "private, no-store")
	if _, err := io.Copy(w, rc); err != nil {
		// Headers are already out; all we can do is log.
		h.logger.WarnContext(ctx, "download stream interrupted",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}
