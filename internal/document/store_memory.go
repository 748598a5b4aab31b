package document

import (
	"context"
	"sort"
	"sync"

	id "admitly/pkg/domain"
	"admitly/pkg/platform/sentinel"
)

// InMemoryStore keeps document records in a map under one mutex.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[id.DocumentID]Document
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[id.DocumentID]Document)}
}

func (s *InMemoryStore) Create(_ context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = *doc
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, docID id.DocumentID) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if doc, ok := s.docs[docID]; ok {
		clone := doc
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByApplication(_ context.Context, appID id.ApplicationID) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []*Document
	for _, doc := range s.docs {
		if doc.ApplicationID == appID {
			clone := doc
			docs = append(docs, &clone)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].UploadedAt.Before(docs[j].UploadedAt)
		}
		return docs[i].ID.String() < docs[j].ID.String()
	})
	return docs, nil
}

func (s *InMemoryStore) Delete(_ context.Context, docID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[docID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.docs, docID)
	return nil
}

func (s *InMemoryStore) DeleteByApplication(_ context.Context, appID id.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for docID, doc := range s.docs {
		if doc.ApplicationID == appID {
			delete(s.docs, docID)
		}
	}
	return nil
}
