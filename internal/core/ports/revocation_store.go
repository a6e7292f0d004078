package ports

import (
	"context"
	"time"
)

// RevocationStore tracks tokens that must no longer be accepted.
type RevocationStore interface {
	// RevokeToken blocks a single token ID until it would have expired anyway.
	RevokeToken(ctx context.Context, tokenID string, until time.Time) error
	// RevokeUser blocks every token issued to userID at or before at.
	RevokeUser(ctx context.Context, userID int64, at time.Time) error
	IsRevoked(ctx context.Context, token *VerifiedToken) (bool, error)
}
