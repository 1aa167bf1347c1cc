package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/leafmarket/internal/domain"
)

const revokedKeyPrefix = "revoked_token:"

// TokenRepository implements domain.TokenStore on Redis. Revocations
// expire with the token they belong to, so the set never needs pruning.
type TokenRepository struct {
	client *redis.Client
	logger *slog.Logger
}

// NewTokenRepository creates a Redis-backed revoked-token store.
func NewTokenRepository(client *redis.Client, logger *slog.Logger) *TokenRepository {
	return &TokenRepository{
		client: client,
		logger: logger.With("component", "token_repository"),
	}
}

func (r *TokenRepository) Revoke(ctx context.Context, jti string, ttlSeconds int64) error {
	key := revokedKeyPrefix + jti
	if err := r.client.Set(ctx, key, "1", time.Duration(ttlSeconds)*time.Second).Err(); err != nil {
		return fmt.Errorf("failed to revoke token %s: %w", jti, err)
	}
	return nil
}

func (r *TokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token %s: %w", jti, err)
	}
	return n > 0, nil
}

var _ domain.TokenStore = (*TokenRepository)(nil)
