// Package handler wires the student-profile endpoints to the profile
// service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"admitly/internal/profile"
	id "admitly/pkg/domain"
	dErrors "admitly/pkg/domain-errors"
	"admitly/pkg/platform/httputil"
	"admitly/pkg/requestcontext"
)

// Service defines the profile operations the handler needs.
type Service interface {
	Upsert(ctx context.Context, caller id.Caller, input profile.UpsertInput) (*profile.StudentProfile, error)
	Get(ctx context.Context, caller id.Caller) (*profile.StudentProfile, error)
	Completion(ctx context.Context, caller id.Caller) (profile.CompletionStatus, error)
}

// Handler wires profile endpoints to the profile service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts profile endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/student/profile", h.HandleUpsert)
	r.Get("/student/profile", h.HandleGet)
	r.Get("/student/completion", h.HandleCompletion)
}

// HandleUpsert handles POST /student/profile.
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpsertProfileRequest](w, r, h.logger)
	if !ok {
		return
	}

	saved, err := h.service.Upsert(ctx, caller, req.ToInput())
	if err != nil {
		h.logger.ErrorContext(ctx, "profile upsert failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", caller.ID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(saved))
}

// HandleGet handles GET /student/profile.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	p, err := h.service.Get(ctx, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(p))
}

// HandleCompletion handles GET /student/completion.
func (h *Handler) HandleCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	status, err := h.service.Completion(ctx, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCompletion(status))
}
