package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	appmetrics "admitly/internal/application/metrics"
	"admitly/internal/notification"
	"admitly/internal/policy"
	"admitly/internal/profile"
	id "admitly/pkg/domain"
	dErrors "admitly/pkg/domain-errors"
	"admitly/pkg/platform/sentinel"
	"admitly/pkg/requestcontext"
)

// Store persists applications. Submit, Review and UpdateDraft are conditional
// writes keyed on the expected prior status; a write that matches zero rows
// returns sentinel.ErrStaleState so the service can fail with the precise
// business error instead of silently succeeding or double-notifying.
type Store interface {
	// Create fails with sentinel.ErrConflict when a non-deleted application
	// already exists for the same (owner, course) pair. Uniqueness is a
	// storage-level constraint, not an existence check.
	Create(ctx context.Context, app *Application) error
	FindByID(ctx context.Context, appID id.ApplicationID) (*Application, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*Application, error)
	List(ctx context.Context, limit, offset int) ([]*Application, error)

	// UpdateDraft persists free-form fields only while status is still DRAFT.
	UpdateDraft(ctx context.Context, app *Application) error
	// Submit transitions DRAFT -> SUBMITTED and sets submitted_at atomically.
	// The write also requires the minimum draft content, so a concurrent edit
	// blanking a required field loses the race instead of slipping through.
	Submit(ctx context.Context, appID id.ApplicationID, submittedAt time.Time) error
	// Review transitions expected -> target and sets review attribution
	// atomically.
	Review(ctx context.Context, appID id.ApplicationID, expected, target Status, reviewedBy id.UserID, reviewedAt time.Time, adminNotes string) error

	Delete(ctx context.Context, appID id.ApplicationID) error
}

// ProfileGate is the slice of the profile service the lifecycle consults at
// submission time.
type ProfileGate interface {
	CompletionFor(ctx context.Context, ownerID id.UserID) (profile.Completion, error)
}

// DocumentCascade removes everything attached to an application when the
// application itself is deleted.
type DocumentCascade interface {
	RemoveAllForApplication(ctx context.Context, appID id.ApplicationID) error
}

// Service is the application lifecycle state machine.
type Service struct {
	store     Store
	profiles  ProfileGate
	documents DocumentCascade
	notifier  notification.Dispatcher
	metrics   *appmetrics.Metrics
	threshold int
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewService(
	store Store,
	profiles ProfileGate,
	documents DocumentCascade,
	notifier notification.Dispatcher,
	metrics *appmetrics.Metrics,
	threshold int,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:     store,
		profiles:  profiles,
		documents: documents,
		notifier:  notifier,
		metrics:   metrics,
		threshold: threshold,
		logger:    logger,
		tracer:    otel.Tracer("admitly/application"),
	}
}

// Create opens a new DRAFT application for the caller on the given course.
func (s *Service) Create(ctx context.Context, caller id.Caller, courseID id.CourseID) (*Application, error) {
	if courseID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "course id is required")
	}

	now := requestcontext.Now(ctx)
	app := &Application{
		ID:        id.NewApplicationID(),
		OwnerID:   caller.ID,
		CourseID:  courseID,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Create(ctx, app); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeDuplicateApplication, "an application for this course already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
	}

	s.metrics.IncrementTransition(string(StatusDraft))
	return app, nil
}

// Get returns one application, with ownership enforced before any data leaves
// the service.
func (s *Service) Get(ctx context.Context, caller id.Caller, appID id.ApplicationID) (*Application, error) {
	app, err := s.find(ctx, appID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanReadApplication(caller, app.OwnerID); err != nil {
		return nil, err
	}
	return app, nil
}

// ListOwn returns the caller's applications.
func (s *Service) ListOwn(ctx context.Context, caller id.Caller) ([]*Application, error) {
	apps, err := s.store.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// ListAll returns a page of all applications; staff only.
func (s *Service) ListAll(ctx context.Context, caller id.Caller, limit, offset int) ([]*Application, error) {
	if err := policy.CanListAll(caller); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	apps, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// UpdateDraft patches free-form fields of a DRAFT application owned by the
// caller. The patch can never touch status, submission or review attribution.
func (s *Service) UpdateDraft(ctx context.Context, caller id.Caller, appID id.ApplicationID, patch DraftPatch) (*Application, error) {
	app, err := s.find(ctx, appID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanMutateDraft(caller, app.OwnerID); err != nil {
		return nil, err
	}
	if app.Status != StatusDraft {
		return nil, dErrors.New(dErrors.CodeInvalidTransition, "only draft applications can be edited")
	}

	patch.apply(app)
	app.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.UpdateDraft(ctx, app); err != nil {
		if errors.Is(err, sentinel.ErrStaleState) {
			// Lost the race against a concurrent submit.
			return nil, dErrors.New(dErrors.CodeInvalidTransition, "only draft applications can be edited")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
	}
	return app, nil
}

// Submit moves a DRAFT application to SUBMITTED. Preconditions, in order and
// first failure winning: minimum draft content, then profile completion at or
// above the threshold. The transition itself is a conditional write keyed on
// DRAFT status and the minimum content, so two concurrent submits resolve to
// one success and one already_submitted, and an edit racing the submit cannot
// land an empty submission.
func (s *Service) Submit(ctx context.Context, caller id.Caller, appID id.ApplicationID) (*Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.submit",
		trace.WithAttributes(attribute.String("application.id", appID.String())))
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.ObserveSubmitLatency(time.Since(start)) }()

	app, err := s.find(ctx, appID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanMutateDraft(caller, app.OwnerID); err != nil {
		return nil, err
	}
	if app.Status != StatusDraft {
		return nil, s.submitRejection(app.Status)
	}

	if !app.hasMinimumContent() {
		s.metrics.IncrementBlocked(string(dErrors.CodeIncompleteApplication))
		return nil, dErrors.New(dErrors.CodeIncompleteApplication,
			"date of birth, nationality and a personal statement are required before submission")
	}

	completion, err := s.profiles.CompletionFor(ctx, app.OwnerID)
	if err != nil {
		return nil, err
	}
	if !completion.Complete(s.threshold) {
		s.metrics.IncrementBlocked(string(dErrors.CodeProfileIncomplete))
		return nil, dErrors.New(dErrors.CodeProfileIncomplete, "profile completion is below the submission threshold").
			WithDetails(map[string]any{
				"missing_fields":   profile.FieldNames(completion.Missing),
				"blocking_reasons": []string{profile.BlockingReasonProfileIncomplete},
				"percentage":       completion.Percentage,
				"threshold":        s.threshold,
			})
	}

	submittedAt := requestcontext.Now(ctx)
	if err := s.store.Submit(ctx, appID, submittedAt); err != nil {
		if errors.Is(err, sentinel.ErrStaleState) {
			return nil, s.submitConflict(ctx, appID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to submit application")
	}

	app.Status = StatusSubmitted
	app.SubmittedAt = &submittedAt
	app.UpdatedAt = submittedAt

	s.metrics.IncrementTransition(string(StatusSubmitted))
	s.notifier.Dispatch(ctx, notification.Event{
		Type:          notification.EventApplicationSubmitted,
		UserID:        app.OwnerID,
		ApplicationID: app.ID,
		Status:        string(StatusSubmitted),
		OccurredAt:    submittedAt,
	})
	return app, nil
}

// submitRejection distinguishes a re-submission from other non-draft states.
func (s *Service) submitRejection(observed Status) error {
	if observed == StatusSubmitted {
		s.metrics.IncrementBlocked(string(dErrors.CodeAlreadySubmitted))
		return dErrors.New(dErrors.CodeAlreadySubmitted, "application has already been submitted")
	}
	return dErrors.New(dErrors.CodeInvalidTransition, "only draft applications can be submitted")
}

// submitConflict classifies a lost submit CAS: either the status moved under
// the caller, or a concurrent draft edit dropped the minimum content.
func (s *Service) submitConflict(ctx context.Context, appID id.ApplicationID) error {
	app, err := s.find(ctx, appID)
	if err != nil {
		return err
	}
	if app.Status != StatusDraft {
		return s.submitRejection(app.Status)
	}
	s.metrics.IncrementBlocked(string(dErrors.CodeIncompleteApplication))
	return dErrors.New(dErrors.CodeIncompleteApplication,
		"date of birth, nationality and a personal statement are required before submission")
}

// ReviewInput is the staff decision payload.
type ReviewInput struct {
	Status     Status
	AdminNotes string
}

// Review applies a staff transition: SUBMITTED, UNDER_REVIEW or WAITLISTED may
// move to UNDER_REVIEW, ACCEPTED, REJECTED or WAITLISTED. The write is
// conditional on the status the reviewer observed, so concurrent reviews
// cannot both apply.
func (s *Service) Review(ctx context.Context, caller id.Caller, appID id.ApplicationID, input ReviewInput) (*Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.review",
		trace.WithAttributes(
			attribute.String("application.id", appID.String()),
			attribute.String("target.status", string(input.Status)),
		))
	defer span.End()

	if err := policy.CanReview(caller); err != nil {
		return nil, err
	}
	if !validReviewTarget(input.Status) {
		return nil, dErrors.New(dErrors.CodeInvalidTransition, "applications cannot be moved to "+string(input.Status))
	}

	app, err := s.find(ctx, appID)
	if err != nil {
		return nil, err
	}
	if !app.Status.Reviewable() {
		if app.Status == StatusDraft {
			return nil, dErrors.New(dErrors.CodeInvalidTransition, "draft applications cannot be reviewed")
		}
		return nil, dErrors.New(dErrors.CodeInvalidTransition, "application decision is final")
	}

	reviewedAt := requestcontext.Now(ctx)
	err = s.store.Review(ctx, appID, app.Status, input.Status, caller.ID, reviewedAt, input.AdminNotes)
	if err != nil {
		if errors.Is(err, sentinel.ErrStaleState) {
			return nil, dErrors.New(dErrors.CodeInvalidTransition, "application changed state during review")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to review application")
	}

	reviewer := caller.ID
	app.Status = input.Status
	app.AdminNotes = input.AdminNotes
	app.ReviewedAt = &reviewedAt
	app.ReviewedByID = &reviewer
	app.UpdatedAt = reviewedAt

	s.metrics.IncrementTransition(string(input.Status))
	s.notifier.Dispatch(ctx, notification.Event{
		Type:          notification.EventApplicationStatusChanged,
		UserID:        app.OwnerID,
		ApplicationID: app.ID,
		Status:        string(input.Status),
		OccurredAt:    reviewedAt,
	})
	return app, nil
}

// Delete removes an application and cascades to its documents and their
// stored bytes. Owner or ADMIN only.
func (s *Service) Delete(ctx context.Context, caller id.Caller, appID id.ApplicationID) error {
	app, err := s.find(ctx, appID)
	if err != nil {
		return err
	}
	if err := policy.CanDeleteApplication(caller, app.OwnerID); err != nil {
		return err
	}

	if s.documents != nil {
		if err := s.documents.RemoveAllForApplication(ctx, appID); err != nil {
			// Blob cleanup is best-effort; the records go regardless.
			s.logger.Warn("document cascade incomplete",
				"application_id", appID.String(),
				"error", err,
			)
		}
	}

	if err := s.store.Delete(ctx, appID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete application")
	}
	return nil
}

func (s *Service) find(ctx context.Context, appID id.ApplicationID) (*Application, error) {
	app, err := s.store.FindByID(ctx, appID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}
