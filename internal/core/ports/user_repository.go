package ports

import (
	"context"

	"github.com/ecocollect/identity-service/internal/core/domain"
)

// UserRepository defines the persistence contract for identity records.
// The store, not the caller, is the authority on email/username
// uniqueness: Create must fail with domain.ErrUserExists when either
// collides, even under concurrent inserts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByResetToken(ctx context.Context, token string) (*domain.User, error)

	// SetResetToken stores token on the user, replacing any live one.
	SetResetToken(ctx context.Context, userID, token string) error

	// UpdatePasswordHash sets the new hash and clears the reset token in
	// the same write, so a consumed token can never match again.
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error

	// AddPoints increments the points balance. The update matches only
	// users whose role carries points; domain.ErrPointsNotApplicable is
	// returned when the user exists but the role does not qualify.
	AddPoints(ctx context.Context, userID string, delta int) (int, error)
}
