package blob

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	dErrors "admitly/pkg/domain-errors"
)

// DiskStore writes blobs under a root directory. Keys are
// "<content-hash-prefix>/<uuid>": the hash prefix spreads files across
// directories and makes corrupted writes detectable, the uuid keeps two
// identical uploads as distinct objects with independent lifecycles.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Put(_ context.Context, data io.Reader) (string, error) {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("init hasher: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, "upload-*")
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "blob store unavailable")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(io.MultiWriter(tmp, hasher), data); err != nil {
		tmp.Close()
		return "", dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to store file")
	}
	if err := tmp.Close(); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to store file")
	}

	prefix := hex.EncodeToString(hasher.Sum(nil))[:16]
	key := prefix + "/" + uuid.NewString()

	dir := filepath.Join(s.root, prefix)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "blob store unavailable")
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.root, filepath.FromSlash(key))); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to store file")
	}
	return key, nil
}

func (s *DiskStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, dErrors.New(dErrors.CodeNotFound, "file not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "blob store unavailable")
	}
	return f, nil
}

func (s *DiskStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to delete file")
	}
	return nil
}

// path validates the key stays under root. Keys are service-generated, the
// check guards against a corrupted record turning into a traversal.
func (s *DiskStore) path(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || filepath.IsAbs(cleaned) || cleaned == ".." ||
		len(cleaned) >= 3 && cleaned[:3] == ".."+string(filepath.Separator) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid storage key")
	}
	return filepath.Join(s.root, cleaned), nil
}
