package application

import (
	"context"
	"sort"
	"sync"
	"time"

	id "admitly/pkg/domain"
	"admitly/pkg/platform/sentinel"
)

type ownerCourse struct {
	owner  id.UserID
	course id.CourseID
}

// InMemoryStore keeps applications in maps under one mutex. The mutex makes
// every operation atomic, which is exactly what the conditional transitions
// rely on; the Postgres store gets the same guarantee from single-statement
// conditional updates.
type InMemoryStore struct {
	mu      sync.RWMutex
	apps    map[id.ApplicationID]Application
	byOwner map[ownerCourse]id.ApplicationID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		apps:    make(map[id.ApplicationID]Application),
		byOwner: make(map[ownerCourse]id.ApplicationID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, app *Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ownerCourse{owner: app.OwnerID, course: app.CourseID}
	if _, exists := s.byOwner[key]; exists {
		return sentinel.ErrConflict
	}
	s.byOwner[key] = app.ID
	s.apps[app.ID] = *app
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, appID id.ApplicationID) (*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if app, ok := s.apps[appID]; ok {
		clone := app
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID id.UserID) ([]*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var apps []*Application
	for _, app := range s.apps {
		if app.OwnerID == ownerID {
			clone := app
			apps = append(apps, &clone)
		}
	}
	sortByCreation(apps)
	return apps, nil
}

func (s *InMemoryStore) List(_ context.Context, limit, offset int) ([]*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]*Application, 0, len(s.apps))
	for _, app := range s.apps {
		clone := app
		apps = append(apps, &clone)
	}
	sortByCreation(apps)

	if offset >= len(apps) {
		return nil, nil
	}
	apps = apps[offset:]
	if limit < len(apps) {
		apps = apps[:limit]
	}
	return apps, nil
}

func (s *InMemoryStore) UpdateDraft(_ context.Context, app *Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.apps[app.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != StatusDraft {
		return sentinel.ErrStaleState
	}

	current.PersonalStatement = app.PersonalStatement
	current.DateOfBirth = app.DateOfBirth
	current.Nationality = app.Nationality
	current.AdditionalInfo = app.AdditionalInfo
	current.UpdatedAt = app.UpdatedAt
	s.apps[app.ID] = current
	return nil
}

func (s *InMemoryStore) Submit(_ context.Context, appID id.ApplicationID, submittedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.apps[appID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != StatusDraft || !current.hasMinimumContent() {
		return sentinel.ErrStaleState
	}

	current.Status = StatusSubmitted
	current.SubmittedAt = &submittedAt
	current.UpdatedAt = submittedAt
	s.apps[appID] = current
	return nil
}

func (s *InMemoryStore) Review(_ context.Context, appID id.ApplicationID, expected, target Status, reviewedBy id.UserID, reviewedAt time.Time, adminNotes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.apps[appID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != expected {
		return sentinel.ErrStaleState
	}

	current.Status = target
	current.AdminNotes = adminNotes
	current.ReviewedAt = &reviewedAt
	current.ReviewedByID = &reviewedBy
	current.UpdatedAt = reviewedAt
	s.apps[appID] = current
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, appID id.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[appID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byOwner, ownerCourse{owner: app.OwnerID, course: app.CourseID})
	delete(s.apps, appID)
	return nil
}

func sortByCreation(apps []*Application) {
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].ID.String() < apps[j].ID.String()
		}
		return apps[i].CreatedAt.Before(apps[j].CreatedAt)
	})
}
