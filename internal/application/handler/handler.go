// Package handler wires the application lifecycle endpoints to the
// application service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"admitly/internal/application"
	"admitly/internal/document"
	id "admitly/pkg/domain"
	dErrors "admitly/pkg/domain-errors"
	"admitly/pkg/platform/httputil"
	"admitly/pkg/requestcontext"
)

// Service defines the lifecycle operations the handler needs.
type Service interface {
	Create(ctx context.Context, caller id.Caller, courseID id.CourseID) (*application.Application, error)
	Get(ctx context.Context, caller id.Caller, appID id.ApplicationID) (*application.Application, error)
	ListOwn(ctx context.Context, caller id.Caller) ([]*application.Application, error)
	ListAll(ctx context.Context, caller id.Caller, limit, offset int) ([]*application.Application, error)
	UpdateDraft(ctx context.Context, caller id.Caller, appID id.ApplicationID, patch application.DraftPatch) (*application.Application, error)
	Submit(ctx context.Context, caller id.Caller, appID id.ApplicationID) (*application.Application, error)
	Review(ctx context.Context, caller id.Caller, appID id.ApplicationID, input application.ReviewInput) (*application.Application, error)
	Delete(ctx context.Context, caller id.Caller, appID id.ApplicationID) error
}

// DocumentLister embeds each single-application read with its documents and
// fresh download descriptors.
type DocumentLister interface {
	List(ctx context.Context, caller id.Caller, appID id.ApplicationID) ([]document.WithDescriptor, error)
}

// Handler wires application endpoints to the lifecycle service.
type Handler struct {
	service   Service
	documents DocumentLister
	logger    *slog.Logger
}

func New(service Service, documents DocumentLister, logger *slog.Logger) *Handler {
	return &Handler{service: service, documents: documents, logger: logger}
}

// Register mounts application endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications", h.HandleCreate)
	r.Get("/applications", h.HandleList)
	r.Get("/applications/{id}", h.HandleGet)
	r.Patch("/applications/{id}", h.HandleUpdateDraft)
	r.Post("/applications/{id}/submit", h.HandleSubmit)
	r.Patch("/applications/{id}/status", h.HandleReview)
	r.Delete("/applications/{id}", h.HandleDelete)
}

// HandleCreate handles POST /applications.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateApplicationRequest](w, r, h.logger)
	if !ok {
		return
	}

	app, err := h.service.Create(ctx, caller, req.ParsedCourseID())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "application created",
		"request_id", requestcontext.RequestID(ctx),
		"application_id", app.ID.String(),
		"user_id", caller.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromApplication(app))
}

// HandleList handles GET /applications: students get their own applications,
// staff get the paginated cross-student listing.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var (
		apps []*application.Application
		err  error
	)
	if caller.Role.IsStaff() {
		limit := queryInt(r, "limit", 50)
		offset := queryInt(r, "offset", 0)
		apps, err = h.service.ListAll(ctx, caller, limit, offset)
	} else {
		apps, err = h.service.ListOwn(ctx, caller)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"applications": FromApplicationList(apps),
	})
}

// HandleGet handles GET /applications/{id}, returning the application with
// its documents and fresh download descriptors.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}

	app, err := h.service.Get(ctx, caller, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	docs, err := h.documents.List(ctx, caller, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := FromApplication(app)
	resp.Documents = FromDocuments(docs)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleUpdateDraft handles PATCH /applications/{id}.
func (h *Handler) HandleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateDraftRequest](w, r, h.logger)
	if !ok {
		return
	}

	app, err := h.service.UpdateDraft(ctx, caller, appID, req.ToPatch())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromApplication(app))
}

// HandleSubmit handles POST /applications/{id}/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}

	app, err := h.service.Submit(ctx, caller, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "application submitted",
		"request_id", requestcontext.RequestID(ctx),
		"application_id", app.ID.String(),
		"user_id", caller.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromApplication(app))
}

// HandleReview handles PATCH /applications/{id}/status.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger)
	if !ok {
		return
	}

	app, err := h.service.Review(ctx, caller, appID, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "application reviewed",
		"request_id", requestcontext.RequestID(ctx),
		"application_id", app.ID.String(),
		"reviewer_id", caller.ID.String(),
		"status", string(app.Status),
	)
	httputil.WriteJSON(w, http.StatusOK, FromApplication(app))
}

// HandleDelete handles DELETE /applications/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	appID, ok := h.appID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, caller, appID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
