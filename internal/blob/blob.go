// Package blob is the file-storage collaborator: it stores opaque bytes,
// deletes them, and signs time-limited retrieval URLs. The document registry
// is its only caller; storage keys never leave the service unsigned.
package blob

import (
	"context"
	"io"
	"time"
)

// Store persists raw document bytes under an opaque key.
type Store interface {
	Put(ctx context.Context, data io.Reader) (key string, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// SignedURL is a retrieval link valid only until ExpiresAt. Callers must not
// cache it beyond that.
type SignedURL struct {
	URL       string
	ExpiresAt time.Time
}

// Signer mints time-boxed download URLs for stored keys. The validity window
// is fixed at construction.
type Signer interface {
	Sign(ctx context.Context, key string) (SignedURL, error)
}

// Resolver turns a presented download credential back into a storage key,
// failing for unknown, expired or tampered credentials. Implemented by the
// same types that sign.
type Resolver interface {
	Resolve(ctx context.Context, token string) (key string, err error)
}
