package document

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admitly/internal/application"
	"admitly/internal/blob"
	id "admitly/pkg/domain"
	dErrors "admitly/pkg/domain-errors"
	"admitly/pkg/requestcontext"
)

const testMaxUploadBytes = 1 << 20

type fixture struct {
	svc    *Service
	store  *InMemoryStore
	apps   *application.InMemoryStore
	blobs  *blob.DiskStore
	signer *blob.HMACSigner
	owner  id.Caller
	appID  id.ApplicationID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	blobs, err := blob.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	signer := blob.NewHMACSigner("test-secret", "https://admitly.test/files", time.Hour)

	store := NewInMemoryStore()
	apps := application.NewInMemoryStore()
	svc := NewService(store, apps, blobs, signer, nil, testMaxUploadBytes, slog.New(slog.DiscardHandler))

	owner := id.Caller{ID: id.NewUserID(), Role: id.RoleStudent}
	now := time.Now()
	app := &application.Application{
		ID:        id.NewApplicationID(),
		OwnerID:   owner.ID,
		CourseID:  id.NewCourseID(),
		Status:    application.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, apps.Create(context.Background(), app))

	return &fixture{svc: svc, store: store, apps: apps, blobs: blobs, signer: signer, owner: owner, appID: app.ID}
}

func (f *fixture) attach(t *testing.T, name, mime, content string) *Document {
	t.Helper()
	doc, err := f.svc.Attach(context.Background(), f.owner, f.appID,
		FileMeta{FileName: name, FileType: mime}, strings.NewReader(content))
	require.NoError(t, err)
	return doc
}

func staff() id.Caller {
	return id.Caller{ID: id.NewUserID(), Role: id.RoleCounsellor}
}

func stranger() id.Caller {
	return id.Caller{ID: id.NewUserID(), Role: id.RoleStudent}
}

func TestAttach(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := f.attach(t, "transcript.pdf", "application/pdf", "pdf bytes")

	assert.Equal(t, f.appID, doc.ApplicationID)
	assert.Equal(t, int64(len("pdf bytes")), doc.FileSize)
	assert.NotEmpty(t, doc.StorageKey)
	assert.False(t, doc.UploadedAt.IsZero())

	rc, err := f.blobs.Open(ctx, doc.StorageKey)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "pdf bytes", string(data))
}

func TestAttachRejectsUnsupportedType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Attach(context.Background(), f.owner, f.appID,
		FileMeta{FileName: "app.exe", FileType: "application/x-msdownload"},
		strings.NewReader("MZ"))

	require.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedFile))
	assert.Equal(t, AllowedTypes(), dErrors.From(err).Details["allowed_types"])

	docs, listErr := f.store.ListByApplication(context.Background(), f.appID)
	require.NoError(t, listErr)
	assert.Empty(t, docs, "rejected uploads must not leave records")
}

func TestAttachRejectsOversizedFile(t *testing.T) {
	f := newFixture(t)

	oversized := strings.Repeat("x", testMaxUploadBytes+1)
	_, err := f.svc.Attach(context.Background(), f.owner, f.appID,
		FileMeta{FileName: "huge.pdf", FileType: "application/pdf"},
		strings.NewReader(oversized))

	require.True(t, dErrors.HasCode(err, dErrors.CodeFileTooLarge))
	assert.Equal(t, int64(testMaxUploadBytes), dErrors.From(err).Details["limit_bytes"])

	docs, listErr := f.store.ListByApplication(context.Background(), f.appID)
	require.NoError(t, listErr)
	assert.Empty(t, docs)
}

func TestAttachAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	meta := FileMeta{FileName: "essay.txt", FileType: "text/plain"}

	_, err := f.svc.Attach(ctx, staff(), f.appID, meta, strings.NewReader("x"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = f.svc.Attach(ctx, stranger(), f.appID, meta, strings.NewReader("x"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = f.svc.Attach(ctx, f.owner, id.NewApplicationID(), meta, strings.NewReader("x"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.attach(t, "transcript.pdf", "application/pdf", "pdf bytes")

	require.NoError(t, f.svc.Remove(ctx, f.owner, f.appID, doc.ID))

	_, err := f.store.FindByID(ctx, doc.ID)
	assert.Error(t, err, "record must be gone")
	_, err = f.blobs.Open(ctx, doc.StorageKey)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound), "blob must be gone")
}

func TestRemoveUnderWrongApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.attach(t, "transcript.pdf", "application/pdf", "pdf bytes")

	// A second application owned by the same student.
	other := &application.Application{
		ID:       id.NewApplicationID(),
		OwnerID:  f.owner.ID,
		CourseID: id.NewCourseID(),
		Status:   application.StatusDraft,
	}
	require.NoError(t, f.apps.Create(ctx, other))

	err := f.svc.Remove(ctx, f.owner, other.ID, doc.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = f.store.FindByID(ctx, doc.ID)
	assert.NoError(t, err, "document must survive the mismatched remove")
}

func TestRemoveAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.attach(t, "transcript.pdf", "application/pdf", "pdf bytes")

	err := f.svc.Remove(ctx, staff(), f.appID, doc.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	err = f.svc.Remove(ctx, stranger(), f.appID, doc.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestResolveDownload(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	ctx := requestcontext.WithTime(context.Background(), now)
	doc := f.attach(t, "transcript.pdf", "application/pdf", "pdf bytes")

	for _, caller := range []id.Caller{f.owner, staff(), {ID: id.NewUserID(), Role: id.RoleAdmin}} {
		desc, err := f.svc.ResolveDownload(ctx, caller, f.appID, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "transcript.pdf", desc.FileName)
		assert.Equal(t, "application/pdf", desc.FileType)
		assert.Equal(t, now.Add(time.Hour), desc.ExpiresAt)

		// The signed URL must resolve back to the stored blob.
		token := desc.URL[strings.LastIndex(desc.URL, "/")+1:]
		key, err := f.signer.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, doc.StorageKey, key)
	}

	_, err := f.svc.ResolveDownload(ctx, stranger(), f.appID, doc.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = f.svc.ResolveDownload(ctx, f.owner, f.appID, id.NewDocumentID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestListWithDescriptors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.attach(t, "a.pdf", "application/pdf", "a")
	second := f.attach(t, "b.png", "image/png", "b")

	listed, err := f.svc.List(ctx, f.owner, f.appID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	got := map[id.DocumentID]WithDescriptor{}
	for _, entry := range listed {
		require.NotEmpty(t, entry.Descriptor.URL, "every record carries a fresh descriptor")
		assert.Equal(t, entry.Document.FileName, entry.Descriptor.FileName)
		got[entry.Document.ID] = entry
	}
	assert.Contains(t, got, first.ID)
	assert.Contains(t, got, second.ID)

	_, err = f.svc.List(ctx, stranger(), f.appID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestRemoveAllForApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	one := f.attach(t, "a.pdf", "application/pdf", "a")
	two := f.attach(t, "b.png", "image/png", "b")

	require.NoError(t, f.svc.RemoveAllForApplication(ctx, f.appID))

	docs, err := f.store.ListByApplication(ctx, f.appID)
	require.NoError(t, err)
	assert.Empty(t, docs)

	for _, doc := range []*Document{one, two} {
		_, err := f.blobs.Open(ctx, doc.StorageKey)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	}
}
