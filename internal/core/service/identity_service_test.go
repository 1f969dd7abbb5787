package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecocollect/identity-service/internal/core/domain"
	"github.com/ecocollect/identity-service/internal/core/ports"
	"github.com/ecocollect/identity-service/internal/infrastructure/security"
)

type stubUserRepo struct {
	users  map[string]*domain.User // keyed by ID
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = "user-" + strconv.Itoa(r.nextID)
	r.users[created.ID] = cloneUser(created)
	return cloneUser(created), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByResetToken(_ context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUserNotFound
	}
	for _, u := range r.users {
		if u.ResetToken == token {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) SetResetToken(_ context.Context, userID, token string) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetToken = token
	return nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, userID, passwordHash string) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = ""
	return nil
}

func (r *stubUserRepo) AddPoints(_ context.Context, userID string, delta int) (int, error) {
	u, ok := r.users[userID]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	if u.Role != domain.RoleCivilian {
		return 0, domain.ErrPointsNotApplicable
	}
	u.Points += delta
	return u.Points, nil
}

func newTestService(repo ports.UserRepository) ports.IdentityService {
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	issuer := NewTokenIssuer("test-secret", time.Hour, nil)
	return NewIdentityService(repo, hasher, issuer, security.NewResetToken, zerolog.Nop())
}

func TestIdentityService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)

	token, user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "A@X.com",
		Password: "pw1secret",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected credential on registration")
	}
	if user.Role != domain.RoleCivilian {
		t.Fatalf("expected default role civilian, got %s", user.Role)
	}
	if user.Points != 0 {
		t.Fatalf("expected 0 points, got %d", user.Points)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.PasswordHash == "pw1secret" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw1secret")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestIdentityService_Register_Validation(t *testing.T) {
	svc := newTestService(newStubUserRepo())

	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "pw"}); err != domain.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for missing username, got %v", err)
	}
	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Email: "b@x.com", Password: "pw", Role: "admin"}); err != domain.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for unknown role, got %v", err)
	}
}

func TestIdentityService_Register_Duplicate(t *testing.T) {
	svc := newTestService(newStubUserRepo())

	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Email: "bob@x.com", Password: "pw1secret"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "robert", Email: "bob@x.com", Password: "pw2secret"}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists for duplicate email, got %v", err)
	}
	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Email: "other@x.com", Password: "pw2secret"}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists for duplicate username, got %v", err)
	}
}

func TestIdentityService_Login(t *testing.T) {
	svc := newTestService(newStubUserRepo())

	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "carol", Email: "carol@x.com", Password: "s3cretpwd", Role: domain.RoleCorporate}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "Carol@X.com", "s3cretpwd")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || user == nil || user.Username != "carol" {
		t.Fatalf("unexpected login result: token=%q user=%+v", token, user)
	}

	if _, _, err := svc.Login(context.Background(), "carol@x.com", "wrongpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	// Unknown email must be indistinguishable from a wrong password.
	if _, _, err := svc.Login(context.Background(), "ghost@x.com", "whatever"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestIdentityService_PasswordResetFlow(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Email: "a@x.com", Password: "pw1secret"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, err := svc.RequestPasswordReset(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("request reset failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected reset token")
	}

	if _, err := svc.RequestPasswordReset(ctx, "nobody@x.com"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound for unknown email, got %v", err)
	}

	// A second request replaces the first token.
	token2, err := svc.RequestPasswordReset(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("second request reset failed: %v", err)
	}
	if token2 == token {
		t.Fatalf("expected a fresh token on re-request")
	}
	if err := svc.ResetPassword(ctx, token, "pw2secret"); err != domain.ErrInvalidResetToken {
		t.Fatalf("expected replaced token to be rejected, got %v", err)
	}

	if err := svc.ResetPassword(ctx, token2, "pw2secret"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	// Old password dead, new password live.
	if _, _, err := svc.Login(ctx, "a@x.com", "pw1secret"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@x.com", "pw2secret"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	// Single use: the consumed token never matches again.
	if err := svc.ResetPassword(ctx, token2, "pw3secret"); err != domain.ErrInvalidResetToken {
		t.Fatalf("expected ErrInvalidResetToken on reuse, got %v", err)
	}
}

func TestIdentityService_AwardPoints(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, civ, err := svc.Register(ctx, ports.RegisterInput{Username: "civ", Email: "civ@x.com", Password: "pw1secret"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, corp, err := svc.Register(ctx, ports.RegisterInput{Username: "corp", Email: "corp@x.com", Password: "pw1secret", Role: domain.RoleCorporate})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	total, err := svc.AwardPoints(ctx, civ.ID, 25)
	if err != nil {
		t.Fatalf("award failed: %v", err)
	}
	if total != 25 {
		t.Fatalf("expected 25 points, got %d", total)
	}

	if _, err := svc.AwardPoints(ctx, corp.ID, 10); err != domain.ErrPointsNotApplicable {
		t.Fatalf("expected ErrPointsNotApplicable for corporate, got %v", err)
	}
	if _, err := svc.AwardPoints(ctx, civ.ID, 0); err != domain.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for non-positive delta, got %v", err)
	}
}

func TestIdentityService_Profile(t *testing.T) {
	svc := newTestService(newStubUserRepo())
	ctx := context.Background()

	_, created, err := svc.Register(ctx, ports.RegisterInput{Username: "dave", Email: "dave@x.com", Password: "pw1secret"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := svc.Profile(ctx, created.ID)
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if user.Username != "dave" {
		t.Fatalf("unexpected profile: %+v", user)
	}

	if _, err := svc.Profile(ctx, "ffffffffffffffffffffffff"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
