package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "classify:"

// Cached memoises a remote classifier in Redis. Classification is idempotent,
// so a hit is returned without calling the remote endpoint. Redis failures fall
// through to the wrapped classifier.
type Cached struct {
	next   Classifier
	client *redis.Client
	ttl    time.Duration
	salt   string
	logger *zap.Logger
}

// NewCached wraps next. salt (typically the model name) is folded into keys so
// switching models does not serve stale answers.
func NewCached(next Classifier, client *redis.Client, ttl time.Duration, salt string, logger *zap.Logger) *Cached {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{next: next, client: client, ttl: ttl, salt: salt, logger: logger}
}

// Classify returns a cached result or delegates and stores a successful one.
func (c *Cached) Classify(ctx context.Context, text string) (Result, error) {
	if c.client == nil {
		return c.next.Classify(ctx, text)
	}
	key := c.key(text)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached Result
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
	case !errors.Is(err, redis.Nil):
		c.logger.Debug("classification cache read failed", zap.Error(err))
	}

	result, err := c.next.Classify(ctx, text)
	if err != nil {
		return result, err
	}
	if payload, jsonErr := json.Marshal(result); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.Debug("classification cache write failed", zap.Error(setErr))
		}
	}
	return result, nil
}

func (c *Cached) key(text string) string {
	sum := sha256.Sum256([]byte(c.salt + "\x00" + text))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
