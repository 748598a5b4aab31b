package profile

import (
	"context"
	"errors"
	"log/slog"

	id "admitly/pkg/domain"
	dErrors "admitly/pkg/domain-errors"
	"admitly/pkg/platform/sentinel"
	"admitly/pkg/requestcontext"
)

// BlockingReasonProfileIncomplete is reported by the completion endpoint when
// the profile is below the submission threshold.
const BlockingReasonProfileIncomplete = "PROFILE_INCOMPLETE"

// Store persists student profiles. Upsert must write the field values and the
// cached completion percentage in one operation; the service never issues a
// field write without a freshly computed percentage.
type Store interface {
	Upsert(ctx context.Context, p *StudentProfile) error
	FindByOwner(ctx context.Context, ownerID id.UserID) (*StudentProfile, error)
}

// UpsertInput is the full set of profile values. Upsert replaces the stored
// profile wholesale; the client submits the complete form.
type UpsertInput struct {
	DateOfBirth        string
	Nationality        string
	Address            string
	EducationLevel     string
	CurrentInstitution string
	Major              string
	GPA                string
	EnglishLevel       string
	WorkExperience     string
	PersonalStatement  string
}

// Service owns profile reads and writes and keeps the derived completion
// percentage consistent with the field values.
type Service struct {
	store     Store
	threshold int
	logger    *slog.Logger
}

func NewService(store Store, threshold int, logger *slog.Logger) *Service {
	return &Service{store: store, threshold: threshold, logger: logger}
}

// Upsert creates or replaces the caller's profile, recomputing the completion
// percentage atomically with the field update.
func (s *Service) Upsert(ctx context.Context, caller id.Caller, input UpsertInput) (*StudentProfile, error) {
	now := requestcontext.Now(ctx)

	p, err := s.store.FindByOwner(ctx, caller.ID)
	switch {
	case err == nil:
		// keep CreatedAt
	case errors.Is(err, sentinel.ErrNotFound):
		p = &StudentProfile{OwnerID: caller.ID, CreatedAt: now}
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}

	p.DateOfBirth = input.DateOfBirth
	p.Nationality = input.Nationality
	p.Address = input.Address
	p.EducationLevel = input.EducationLevel
	p.CurrentInstitution = input.CurrentInstitution
	p.Major = input.Major
	p.GPA = input.GPA
	p.EnglishLevel = input.EnglishLevel
	p.WorkExperience = input.WorkExperience
	p.PersonalStatement = input.PersonalStatement

	p.CompletionPercentage = Evaluate(p).Percentage
	p.UpdatedAt = now

	if err := s.store.Upsert(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save profile")
	}
	return p, nil
}

// Get returns the caller's profile.
func (s *Service) Get(ctx context.Context, caller id.Caller) (*StudentProfile, error) {
	p, err := s.store.FindByOwner(ctx, caller.ID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return p, nil
}

// CompletionStatus is the payload behind GET /student/completion.
type CompletionStatus struct {
	Percentage      int
	Missing         []Field
	BlockingReasons []string
}

// Completion evaluates the caller's current profile. A user without a saved
// profile evaluates as fully incomplete rather than erroring; the endpoint
// exists precisely to tell them what is left to fill.
func (s *Service) Completion(ctx context.Context, caller id.Caller) (CompletionStatus, error) {
	c, err := s.CompletionFor(ctx, caller.ID)
	if err != nil {
		return CompletionStatus{}, err
	}

	status := CompletionStatus{Percentage: c.Percentage, Missing: c.Missing}
	if !c.Complete(s.threshold) {
		status.BlockingReasons = []string{BlockingReasonProfileIncomplete}
	}
	return status, nil
}

// CompletionFor evaluates the stored profile of an arbitrary user. The
// application lifecycle consults this at submission time.
func (s *Service) CompletionFor(ctx context.Context, ownerID id.UserID) (Completion, error) {
	p, err := s.store.FindByOwner(ctx, ownerID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Evaluate(&StudentProfile{}), nil
	}
	if err != nil {
		return Completion{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return Evaluate(p), nil
}

// Threshold exposes the configured submission gate for response rendering.
func (s *Service) Threshold() int { return s.threshold }
