package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
)

// RevocationStore keeps revoked tokens and users in Redis.
//
// Key formats:
//
//	revoked:token:<jti>  -> "1", expires with the token
//	revoked:user:<id>    -> unix seconds of the revocation, expires after maxTokenTTL
//
// A user entry rejects every token of that user issued at or before the
// stored second.
type RevocationStore struct {
	client      *redis.Client
	maxTokenTTL time.Duration
	now         func() time.Time
}

// NewRevocationStore creates a store. maxTokenTTL must be at least the
// lifetime of issued tokens so user entries outlive them.
func NewRevocationStore(client *redis.Client, maxTokenTTL time.Duration) *RevocationStore {
	return &RevocationStore{client: client, maxTokenTTL: maxTokenTTL, now: time.Now}
}

// RevokeToken blocks tokenID until it expires. Already expired tokens are
// not stored.
func (s *RevocationStore) RevokeToken(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, tokenKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RevocationStore) RevokeUser(ctx context.Context, userID int64, at time.Time) error {
	if err := s.client.Set(ctx, userKey(userID), at.Unix(), s.maxTokenTTL).Err(); err != nil {
		return fmt.Errorf("revoke user: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, token *ports.VerifiedToken) (bool, error) {
	pipe := s.client.Pipeline()
	tokenCmd := pipe.Exists(ctx, tokenKey(token.TokenID))
	userCmd := pipe.Get(ctx, userKey(token.Identity.ID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("revocation check: %w", err)
	}

	if n, _ := tokenCmd.Result(); n > 0 {
		return true, nil
	}

	revokedAt, err := userCmd.Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return token.IssuedAt.Unix() <= revokedAt, nil
}

func tokenKey(tokenID string) string {
	return "revoked:token:" + tokenID
}

func userKey(userID int64) string {
	return "revoked:user:" + strconv.FormatInt(userID, 10)
}
