package domain

import (
	"errors"
	"time"
)

const (
	RoleCivilian  = "civilian"
	RoleCorporate = "corporate"
)

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	return role == RoleCivilian || role == RoleCorporate
}

var ErrInvalidInput = errors.New("missing or invalid field")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid token")
var ErrForbidden = errors.New("access forbidden")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidResetToken = errors.New("invalid or already used reset token")
var ErrPointsNotApplicable = errors.New("points not applicable for role")

// User models a registered identity. PasswordHash and ResetToken never
// leave the process in a response body.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          string    `json:"role"`
	Points        int       `json:"points"`
	ProfileImage  string    `json:"profile_image,omitempty"`
	TermsApproved bool      `json:"terms_approved"`
	ResetToken    string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Claims is the validated content of a credential: who the bearer is and
// which role gate applies. JTI identifies the token for revocation.
type Claims struct {
	UserID string
	Email  string
	Role   string
	JTI    string
}
