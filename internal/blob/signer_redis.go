package blob

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "admitly/pkg/domain-errors"
	"admitly/pkg/requestcontext"
)

const redisTokenPrefix = "download:"

// RedisSigner stores a random token -> storage key mapping with a TTL. The
// TTL is enforced server-side, and deleting the token revokes the link early,
// which the stateless HMAC signer cannot do.
type RedisSigner struct {
	client   *redis.Client
	baseURL  string
	validity time.Duration
}

func NewRedisSigner(client *redis.Client, baseURL string, validity time.Duration) *RedisSigner {
	return &RedisSigner{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		validity: validity,
	}
}

func (s *RedisSigner) Sign(ctx context.Context, key string) (SignedURL, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return SignedURL{}, fmt.Errorf("generate download token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := s.client.Set(ctx, redisTokenPrefix+token, key, s.validity).Err(); err != nil {
		return SignedURL{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to sign download link")
	}
	return SignedURL{
		URL:       fmt.Sprintf("%s/%s", s.baseURL, token),
		ExpiresAt: requestcontext.Now(ctx).Add(s.validity),
	}, nil
}

func (s *RedisSigner) Resolve(ctx context.Context, token string) (string, error) {
	key, err := s.client.Get(ctx, redisTokenPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", dErrors.New(dErrors.CodeNotFound, "download link expired")
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to resolve download link")
	}
	return key, nil
}
