package token

import (
	"context"
	"time"
)

// RefreshToken is a server-persisted opaque token. Access tokens are JWTs
// and never stored; refresh tokens live here so they can be revoked.
type RefreshToken struct {
	Token      string
	CustomerID string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

type Repository interface {
	Create(ctx context.Context, t RefreshToken) error
	Get(ctx context.Context, token string) (*RefreshToken, error)
	Delete(ctx context.Context, token string) error
}
