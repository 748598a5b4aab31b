package document

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"admitly/internal/application"
	"admitly/internal/blob"
	docmetrics "admitly/internal/document/metrics"
	"admitly/internal/policy"
	id "admitly/pkg/domain"
	dErrors "admitly/pkg/domain-errors"
	"admitly/pkg/platform/sentinel"
	"admitly/pkg/requestcontext"
)

// Store persists document records. Blob bytes are not its concern.
type Store interface {
	Create(ctx context.Context, doc *Document) error
	FindByID(ctx context.Context, docID id.DocumentID) (*Document, error)
	ListByApplication(ctx context.Context, appID id.ApplicationID) ([]*Document, error)
	Delete(ctx context.Context, docID id.DocumentID) error
	DeleteByApplication(ctx context.Context, appID id.ApplicationID) error
}

// ApplicationDirectory is the slice of the application store the registry
// needs: ownership lookups for authorization.
type ApplicationDirectory interface {
	FindByID(ctx context.Context, appID id.ApplicationID) (*application.Application, error)
}

// Service is the document registry: it owns the upload policy, the link
// between records and blobs, and download-descriptor minting.
type Service struct {
	store    Store
	apps     ApplicationDirectory
	blobs    blob.Store
	signer   blob.Signer
	metrics  *docmetrics.Metrics
	maxBytes int64
	logger   *slog.Logger
}

func NewService(
	store Store,
	apps ApplicationDirectory,
	blobs blob.Store,
	signer blob.Signer,
	metrics *docmetrics.Metrics,
	maxBytes int64,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:    store,
		apps:     apps,
		blobs:    blobs,
		signer:   signer,
		metrics:  metrics,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Attach stores an uploaded file and records it under the application. Owner
// only. The MIME type is checked before any bytes move; the size ceiling is
// enforced on the bytes actually read, not on a caller-declared length.
func (s *Service) Attach(ctx context.Context, caller id.Caller, appID id.ApplicationID, meta FileMeta, data io.Reader) (*Document, error) {
	app, err := s.findApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanManageDocuments(caller, app.OwnerID); err != nil {
		return nil, err
	}

	if meta.FileName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "file name is required")
	}
	if !TypeAllowed(meta.FileType) {
		s.metrics.IncrementRejected(string(dErrors.CodeUnsupportedFile))
		return nil, dErrors.New(dErrors.CodeUnsupportedFile, "file type is not allowed").
			WithDetails(map[string]any{"allowed_types": AllowedTypes()})
	}

	// Read at most one byte past the ceiling so an oversized upload is
	// detected without buffering the whole stream.
	counted := &countingReader{r: io.LimitReader(data, s.maxBytes+1)}
	key, err := s.blobs.Put(ctx, counted)
	if err != nil {
		return nil, err
	}
	if counted.n > s.maxBytes {
		s.deleteBlob(ctx, key)
		s.metrics.IncrementRejected(string(dErrors.CodeFileTooLarge))
		return nil, dErrors.New(dErrors.CodeFileTooLarge, "file exceeds the upload size limit").
			WithDetails(map[string]any{"limit_bytes": s.maxBytes})
	}

	doc := &Document{
		ID:            id.NewDocumentID(),
		ApplicationID: appID,
		FileName:      meta.FileName,
		FileType:      meta.FileType,
		FileSize:      counted.n,
		StorageKey:    key,
		UploadedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, doc); err != nil {
		s.deleteBlob(ctx, key)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record document")
	}

	s.metrics.IncrementUploaded(doc.FileType)
	return doc, nil
}

// Remove deletes one document. Owner only; a document id under a different
// application is not_found, never a hint that it exists elsewhere.
func (s *Service) Remove(ctx context.Context, caller id.Caller, appID id.ApplicationID, docID id.DocumentID) error {
	app, err := s.findApplication(ctx, appID)
	if err != nil {
		return err
	}
	if err := policy.CanManageDocuments(caller, app.OwnerID); err != nil {
		return err
	}

	doc, err := s.findUnderApplication(ctx, appID, docID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, docID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove document")
	}
	s.deleteBlob(ctx, doc.StorageKey)
	s.metrics.IncrementDeleted()
	return nil
}

// ResolveDownload mints a fresh time-boxed download descriptor. Owner or
// staff; other callers get forbidden.
func (s *Service) ResolveDownload(ctx context.Context, caller id.Caller, appID id.ApplicationID, docID id.DocumentID) (Descriptor, error) {
	app, err := s.findApplication(ctx, appID)
	if err != nil {
		return Descriptor{}, err
	}
	if err := policy.CanResolveDownload(caller, app.OwnerID); err != nil {
		return Descriptor{}, err
	}

	doc, err := s.findUnderApplication(ctx, appID, docID)
	if err != nil {
		return Descriptor{}, err
	}
	return s.describe(ctx, doc)
}

// List returns the application's documents, each with a freshly signed
// descriptor. Stale descriptors are never persisted or reused.
func (s *Service) List(ctx context.Context, caller id.Caller, appID id.ApplicationID) ([]WithDescriptor, error) {
	app, err := s.findApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanReadApplication(caller, app.OwnerID); err != nil {
		return nil, err
	}

	docs, err := s.store.ListByApplication(ctx, appID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}

	out := make([]WithDescriptor, 0, len(docs))
	for _, doc := range docs {
		desc, err := s.describe(ctx, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, WithDescriptor{Document: doc, Descriptor: desc})
	}
	return out, nil
}

// RemoveAllForApplication deletes every record and blob under an application.
// Called by the application lifecycle on delete; blob failures are collected
// but do not stop the record cleanup.
func (s *Service) RemoveAllForApplication(ctx context.Context, appID id.ApplicationID) error {
	docs, err := s.store.ListByApplication(ctx, appID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents for cascade")
	}

	var blobFailures int
	for _, doc := range docs {
		if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
			blobFailures++
			s.logger.Warn("orphaned blob after cascade",
				"document_id", doc.ID.String(),
				"storage_key", doc.StorageKey,
				"error", err,
			)
		}
	}

	if err := s.store.DeleteByApplication(ctx, appID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete documents")
	}
	for range docs {
		s.metrics.IncrementDeleted()
	}
	if blobFailures > 0 {
		return dErrors.New(dErrors.CodeStorageUnavailable, "some stored files could not be deleted")
	}
	return nil
}

func (s *Service) describe(ctx context.Context, doc *Document) (Descriptor, error) {
	signed, err := s.signer.Sign(ctx, doc.StorageKey)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		URL:       signed.URL,
		FileName:  doc.FileName,
		FileType:  doc.FileType,
		ExpiresAt: signed.ExpiresAt,
	}, nil
}

func (s *Service) findApplication(ctx context.Context, appID id.ApplicationID) (*application.Application, error) {
	app, err := s.apps.FindByID(ctx, appID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

func (s *Service) findUnderApplication(ctx context.Context, appID id.ApplicationID, docID id.DocumentID) (*Document, error) {
	doc, err := s.store.FindByID(ctx, docID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	if doc.ApplicationID != appID {
		return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	}
	return doc, nil
}

func (s *Service) deleteBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn("orphaned blob", "storage_key", key, "error", err)
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
