package profile

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "admitly/pkg/domain"
	"admitly/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fullInput() UpsertInput {
	return UpsertInput{
		DateOfBirth:        "2001-04-12",
		Nationality:        "Kazakh",
		Address:            "12 Abay Ave",
		EducationLevel:     "Bachelor",
		CurrentInstitution: "KBTU",
		Major:              "Computer Science",
		GPA:                "3.6",
		EnglishLevel:       "C1",
	}
}

func TestServiceUpsert(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store, 80, discardLogger())
	caller := id.Caller{ID: id.NewUserID(), Role: id.RoleStudent}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("first save creates the profile with a computed percentage", func(t *testing.T) {
		input := fullInput()
		input.GPA = ""
		input.EnglishLevel = ""

		p, err := svc.Upsert(ctx, caller, input)
		require.NoError(t, err)
		assert.Equal(t, 75, p.CompletionPercentage)
		assert.Equal(t, now, p.CreatedAt)
		assert.Equal(t, now, p.UpdatedAt)

		stored, err := store.FindByOwner(ctx, caller.ID)
		require.NoError(t, err)
		assert.Equal(t, 75, stored.CompletionPercentage,
			"percentage must be persisted with the fields, not recomputed lazily")
	})

	t.Run("subsequent save recomputes and preserves CreatedAt", func(t *testing.T) {
		later := requestcontext.WithTime(context.Background(), now.Add(time.Hour))
		p, err := svc.Upsert(later, caller, fullInput())
		require.NoError(t, err)
		assert.Equal(t, 100, p.CompletionPercentage)
		assert.Equal(t, now, p.CreatedAt)
		assert.Equal(t, now.Add(time.Hour), p.UpdatedAt)
	})
}

func TestServiceCompletion(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store, 80, discardLogger())
	caller := id.Caller{ID: id.NewUserID(), Role: id.RoleStudent}
	ctx := context.Background()

	t.Run("no saved profile evaluates as fully incomplete", func(t *testing.T) {
		status, err := svc.Completion(ctx, caller)
		require.NoError(t, err)
		assert.Equal(t, 0, status.Percentage)
		assert.Equal(t, RequiredFields, status.Missing)
		assert.Equal(t, []string{BlockingReasonProfileIncomplete}, status.BlockingReasons)
	})

	t.Run("below threshold reports the blocking reason", func(t *testing.T) {
		input := fullInput()
		input.GPA = ""
		input.EnglishLevel = ""
		input.Major = "" // 5 of 8 -> 63
		_, err := svc.Upsert(ctx, caller, input)
		require.NoError(t, err)

		status, err := svc.Completion(ctx, caller)
		require.NoError(t, err)
		assert.Equal(t, 63, status.Percentage)
		assert.Equal(t, []string{BlockingReasonProfileIncomplete}, status.BlockingReasons)
	})

	t.Run("at threshold there are no blocking reasons", func(t *testing.T) {
		_, err := svc.Upsert(ctx, caller, fullInput())
		require.NoError(t, err)

		status, err := svc.Completion(ctx, caller)
		require.NoError(t, err)
		assert.Equal(t, 100, status.Percentage)
		assert.Empty(t, status.BlockingReasons)
	})
}

func TestServiceCompletionFor(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store, 80, discardLogger())
	owner := id.Caller{ID: id.NewUserID(), Role: id.RoleStudent}

	c, err := svc.CompletionFor(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.False(t, c.Complete(80))

	_, err = svc.Upsert(context.Background(), owner, fullInput())
	require.NoError(t, err)

	c, err = svc.CompletionFor(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.True(t, c.Complete(80))
}
