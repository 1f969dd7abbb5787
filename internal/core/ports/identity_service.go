package ports

import (
	"context"

	"github.com/ecocollect/identity-service/internal/core/domain"
)

// RegisterInput carries the validated fields of a registration request.
type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	Role          string
	TermsApproved bool
}

// IdentityService implements the account lifecycle: registration, login,
// logout, profile lookup, the password-reset flow, and point awards.
type IdentityService interface {
	Register(ctx context.Context, in RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, userID string) (*domain.User, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	AwardPoints(ctx context.Context, userID string, delta int) (int, error)
}
