package ports

import (
	"context"

	"github.com/ecocollect/identity-service/internal/core/domain"
)

// TokenIssuer mints and validates bearer credentials. Validate collapses
// every failure mode (expired, malformed, bad signature, revoked) into
// domain.ErrInvalidToken so callers cannot distinguish them.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
	Validate(ctx context.Context, token string) (*domain.Claims, error)
	Revoke(ctx context.Context, token string) error
}

// TokenRevoker is the denylist consulted on validation and written on
// logout. Entries need to live only as long as the token they revoke.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttlSeconds int64) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
