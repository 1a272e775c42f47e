package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
)

const userCachePrefix = "auth:user:"

// UserReader is the read side needed to resolve token subjects.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// cachedUser omits the password hash; cached records only serve authentication.
type cachedUser struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Plan      domain.Plan `json:"plan"`
	CreatedAt time.Time   `json:"created_at"`
}

// CachedUserLookup fronts a UserReader with a Redis read-through cache.
type CachedUserLookup struct {
	next   UserReader
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedUserLookup builds the cache. A nil client or non-positive ttl disables it.
func NewCachedUserLookup(next UserReader, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedUserLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedUserLookup{next: next, client: client, ttl: ttl, logger: logger}
}

// GetByEmail returns the cached user or loads and caches it. Misses are not cached so a
// newly registered user resolves immediately. Entries are never invalidated; a change to a
// stored user shows up once its entry expires.
func (c *CachedUserLookup) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if !c.enabled() {
		return c.next.GetByEmail(ctx, email)
	}

	key := cacheKey(email)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedUser
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return &domain.User{
				ID:        cached.ID,
				Name:      cached.Name,
				Email:     cached.Email,
				Plan:      cached.Plan,
				CreatedAt: cached.CreatedAt,
			}, nil
		}
		c.logger.Warn("discarding corrupt user cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("user cache read failed", zap.Error(err))
	}

	user, err := c.next.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedUser{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Plan:      user.Plan,
		CreatedAt: user.CreatedAt,
	})
	if err == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("user cache write failed", zap.Error(setErr))
		}
	}
	return user, nil
}

func (c *CachedUserLookup) enabled() bool {
	return c.client != nil && c.ttl > 0
}

func cacheKey(email string) string {
	return userCachePrefix + strings.ToLower(strings.TrimSpace(email))
}
