package blob

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	dErrors "admitly/pkg/domain-errors"
	"admitly/pkg/requestcontext"
)

// HMACSigner mints self-contained signed URLs: the token embeds the storage
// key and expiry, authenticated by an HMAC over both. No server-side state,
// which also means no revocation before expiry; the Redis signer is preferred
// when Redis is configured.
type HMACSigner struct {
	secret   []byte
	baseURL  string
	validity time.Duration
}

// NewHMACSigner builds a signer issuing URLs under baseURL (e.g.
// "https://host/files") valid for the given window.
func NewHMACSigner(secret, baseURL string, validity time.Duration) *HMACSigner {
	return &HMACSigner{
		secret:   []byte(secret),
		baseURL:  strings.TrimRight(baseURL, "/"),
		validity: validity,
	}
}

func (s *HMACSigner) Sign(ctx context.Context, key string) (SignedURL, error) {
	expiresAt := requestcontext.Now(ctx).Add(s.validity)
	token := s.encode(key, expiresAt)
	return SignedURL{
		URL:       fmt.Sprintf("%s/%s", s.baseURL, token),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *HMACSigner) Resolve(ctx context.Context, token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", dErrors.New(dErrors.CodeNotFound, "file not found")
	}

	// token payload: key|expiryUnix|hexmac
	parts := strings.Split(string(raw), "|")
	if len(parts) != 3 {
		return "", dErrors.New(dErrors.CodeNotFound, "file not found")
	}
	key, expRaw, mac := parts[0], parts[1], parts[2]

	expUnix, err := strconv.ParseInt(expRaw, 10, 64)
	if err != nil {
		return "", dErrors.New(dErrors.CodeNotFound, "file not found")
	}
	if !hmac.Equal([]byte(mac), []byte(s.mac(key, expUnix))) {
		return "", dErrors.New(dErrors.CodeNotFound, "file not found")
	}
	if requestcontext.Now(ctx).After(time.Unix(expUnix, 0)) {
		return "", dErrors.New(dErrors.CodeNotFound, "download link expired")
	}
	return key, nil
}

func (s *HMACSigner) encode(key string, expiresAt time.Time) string {
	// Keys are service-generated hex/uuid paths, so "|" is a safe separator.
	expUnix := expiresAt.Unix()
	payload := fmt.Sprintf("%s|%d|%s", key, expUnix, s.mac(key, expUnix))
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

func (s *HMACSigner) mac(key string, expUnix int64) string {
	h := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(h, "%s|%d", key, expUnix)
	return hex.EncodeToString(h.Sum(nil))
}
