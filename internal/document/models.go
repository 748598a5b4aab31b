// Package document is the registry for files attached to applications:
// upload with type and size policy, removal, and time-limited download
// descriptors. Bytes live in the blob store; the registry only ever holds the
// opaque storage key.
package document

import (
	"time"

	id "admitly/pkg/domain"
)

// allowedTypes is the upload MIME allow-list: common document and image
// formats. Everything else is rejected before any bytes are stored.
var allowedTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain": {},
	"image/jpeg": {},
	"image/png":  {},
}

// AllowedTypes returns the upload allow-list in stable order, for error
// details and documentation endpoints.
func AllowedTypes() []string {
	return []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain",
		"image/jpeg",
		"image/png",
	}
}

// TypeAllowed reports whether the MIME type may be uploaded.
func TypeAllowed(fileType string) bool {
	_, ok := allowedTypes[fileType]
	return ok
}

// Document is one file attached to an application. StorageKey is opaque to
// callers; only the registry turns it into a retrievable URL, and only for a
// bounded time.
type Document struct {
	ID            id.DocumentID
	ApplicationID id.ApplicationID
	FileName      string
	FileType      string
	FileSize      int64
	StorageKey    string
	UploadedAt    time.Time
}

// FileMeta is the caller-supplied metadata accompanying an upload.
type FileMeta struct {
	FileName string
	FileType string
}

// Descriptor is a freshly signed download reference. Descriptors are never
// persisted; every read mints a new one.
type Descriptor struct {
	URL       string
	FileName  string
	FileType  string
	ExpiresAt time.Time
}

// WithDescriptor pairs a document record with a fresh download descriptor
// for listing responses.
type WithDescriptor struct {
	Document   *Document
	Descriptor Descriptor
}
