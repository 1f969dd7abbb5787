package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecocollect/identity-service/internal/api/metrics"
	"github.com/ecocollect/identity-service/internal/core/domain"
	"github.com/ecocollect/identity-service/internal/core/ports"
)

// dummyHash is a well-formed bcrypt hash compared against when the login
// email is unknown, so unknown-email and wrong-password take similar time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// ResetTokenGenerator produces the single-use capability string for the
// password-reset flow.
type ResetTokenGenerator func() (string, error)

type identityService struct {
	repo       ports.UserRepository
	hasher     ports.PasswordHasher
	issuer     ports.TokenIssuer
	resetToken ResetTokenGenerator
	log        zerolog.Logger
}

// NewIdentityService wires the account lifecycle over its collaborators.
func NewIdentityService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	issuer ports.TokenIssuer,
	resetToken ResetTokenGenerator,
	log zerolog.Logger,
) ports.IdentityService {
	return &identityService{
		repo:       repo,
		hasher:     hasher,
		issuer:     issuer,
		resetToken: resetToken,
		log:        log,
	}
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the identity and issues a credential, so a new user is
// logged in immediately.
func (s *identityService) Register(ctx context.Context, in ports.RegisterInput) (string, *domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := NormalizeEmail(in.Email)
	role := in.Role
	if role == "" {
		role = domain.RoleCivilian
	}

	if username == "" || email == "" || in.Password == "" {
		return "", nil, domain.ErrInvalidInput
	}
	if !domain.ValidRole(role) {
		return "", nil, domain.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		TermsApproved: in.TermsApproved,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return "", nil, err
	}

	token, err := s.issuer.Issue(created)
	if err != nil {
		return "", nil, fmt.Errorf("issue credential: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues(created.Role).Inc()
	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")

	return token, created, nil
}

// Login verifies the password and mints a credential. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *identityService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, dummyHash)
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue credential: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return token, user, nil
}

// Logout revokes the presented credential. A missing or already invalid
// token is not an error: the client ends up logged out either way.
func (s *identityService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.issuer.Revoke(ctx, token)
}

func (s *identityService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// RequestPasswordReset stores a fresh single-use token on the account,
// replacing any earlier one, and hands it back to the caller. Delivery
// (email) is out of scope.
func (s *identityService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", domain.ErrInvalidInput
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	token, err := s.resetToken()
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	if err := s.repo.SetResetToken(ctx, user.ID, token); err != nil {
		return "", err
	}

	metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("password reset requested")
	return token, nil
}

// ResetPassword consumes a reset token: the token is the sole lookup key,
// and the store clears it in the same write that sets the new hash.
func (s *identityService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return domain.ErrInvalidInput
	}

	user, err := s.repo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidResetToken
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

// AwardPoints credits reward points. Only civilian accounts carry a
// points balance; the repository enforces the role filter.
func (s *identityService) AwardPoints(ctx context.Context, userID string, delta int) (int, error) {
	if userID == "" || delta <= 0 {
		return 0, domain.ErrInvalidInput
	}
	total, err := s.repo.AddPoints(ctx, userID, delta)
	if err != nil {
		return 0, err
	}
	metrics.PointsAwardedTotal.Add(float64(delta))
	return total, nil
}
