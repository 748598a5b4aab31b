package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "admitly/pkg/domain"
	"admitly/pkg/platform/sentinel"
)

type ApplicationStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestApplicationStoreSuite(t *testing.T) {
	suite.Run(t, new(ApplicationStoreSuite))
}

func (s *ApplicationStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *ApplicationStoreSuite) newDraft() *Application {
	now := time.Now()
	return &Application{
		ID:                id.NewApplicationID(),
		OwnerID:           id.NewUserID(),
		CourseID:          id.NewCourseID(),
		Status:            StatusDraft,
		PersonalStatement: "I would like to study here",
		DateOfBirth:       "2001-04-12",
		Nationality:       "Kazakh",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (s *ApplicationStoreSuite) TestCreateAndFind() {
	app := s.newDraft()
	s.Require().NoError(s.store.Create(s.ctx, app))

	found, err := s.store.FindByID(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(StatusDraft, found.Status)
	s.Equal(app.OwnerID, found.OwnerID)
}

func (s *ApplicationStoreSuite) TestOwnerCourseUniqueness() {
	app := s.newDraft()
	s.Require().NoError(s.store.Create(s.ctx, app))

	dup := s.newDraft()
	dup.OwnerID = app.OwnerID
	dup.CourseID = app.CourseID
	s.Require().ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrConflict)

	s.Run("same owner, different course is fine", func() {
		other := s.newDraft()
		other.OwnerID = app.OwnerID
		s.Require().NoError(s.store.Create(s.ctx, other))
	})

	s.Run("slot frees up after deletion", func() {
		s.Require().NoError(s.store.Delete(s.ctx, app.ID))
		again := s.newDraft()
		again.OwnerID = app.OwnerID
		again.CourseID = app.CourseID
		s.Require().NoError(s.store.Create(s.ctx, again))
	})
}

func (s *ApplicationStoreSuite) TestSubmitIsConditional() {
	app := s.newDraft()
	s.Require().NoError(s.store.Create(s.ctx, app))

	now := time.Now()
	s.Require().NoError(s.store.Submit(s.ctx, app.ID, now))

	found, err := s.store.FindByID(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(StatusSubmitted, found.Status)
	s.Require().NotNil(found.SubmittedAt)
	s.WithinDuration(now, *found.SubmittedAt, time.Millisecond)

	s.Run("second submit observes stale state", func() {
		s.Require().ErrorIs(s.store.Submit(s.ctx, app.ID, time.Now()), sentinel.ErrStaleState)
	})

	s.Run("unknown application", func() {
		s.Require().ErrorIs(s.store.Submit(s.ctx, id.NewApplicationID(), time.Now()), sentinel.ErrNotFound)
	})
}

func (s *ApplicationStoreSuite) TestSubmitRequiresMinimumContent() {
	app := s.newDraft()
	app.DateOfBirth = ""
	s.Require().NoError(s.store.Create(s.ctx, app))

	s.Require().ErrorIs(s.store.Submit(s.ctx, app.ID, time.Now()), sentinel.ErrStaleState)

	found, err := s.store.FindByID(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(StatusDraft, found.Status)
	s.Nil(found.SubmittedAt)
}

func (s *ApplicationStoreSuite) TestUpdateDraftOnlyWhileDraft() {
	app := s.newDraft()
	s.Require().NoError(s.store.Create(s.ctx, app))

	app.PersonalStatement = "I would like to study here"
	s.Require().NoError(s.store.UpdateDraft(s.ctx, app))

	s.Require().NoError(s.store.Submit(s.ctx, app.ID, time.Now()))
	s.Require().ErrorIs(s.store.UpdateDraft(s.ctx, app), sentinel.ErrStaleState)
}

func (s *ApplicationStoreSuite) TestReviewIsConditionalOnExpectedStatus() {
	app := s.newDraft()
	s.Require().NoError(s.store.Create(s.ctx, app))
	s.Require().NoError(s.store.Submit(s.ctx, app.ID, time.Now()))

	reviewer := id.NewUserID()
	now := time.Now()
	s.Require().NoError(s.store.Review(s.ctx, app.ID, StatusSubmitted, StatusUnderReview, reviewer, now, "checking transcripts"))

	found, err := s.store.FindByID(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(StatusUnderReview, found.Status)
	s.Equal("checking transcripts", found.AdminNotes)
	s.Require().NotNil(found.ReviewedByID)
	s.Equal(reviewer, *found.ReviewedByID)
	s.Require().NotNil(found.ReviewedAt)

	s.Run("stale expectation is rejected", func() {
		err := s.store.Review(s.ctx, app.ID, StatusSubmitted, StatusAccepted, reviewer, time.Now(), "")
		s.Require().ErrorIs(err, sentinel.ErrStaleState)
	})
}

func (s *ApplicationStoreSuite) TestListPagination() {
	owner := id.NewUserID()
	for i := 0; i < 5; i++ {
		app := s.newDraft()
		app.OwnerID = owner
		app.CreatedAt = time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC)
		s.Require().NoError(s.store.Create(s.ctx, app))
	}

	page, err := s.store.List(s.ctx, 2, 0)
	s.Require().NoError(err)
	s.Len(page, 2)

	rest, err := s.store.List(s.ctx, 10, 2)
	s.Require().NoError(err)
	s.Len(rest, 3)
	s.True(page[1].CreatedAt.Before(rest[0].CreatedAt))

	beyond, err := s.store.List(s.ctx, 10, 99)
	s.Require().NoError(err)
	s.Empty(beyond)

	own, err := s.store.ListByOwner(s.ctx, owner)
	s.Require().NoError(err)
	s.Len(own, 5)
}
