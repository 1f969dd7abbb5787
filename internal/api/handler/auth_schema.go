package handler

import (
	"time"

	"github.com/ecocollect/identity-service/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type registerRequest struct {
	Username      string `json:"username"       validate:"required,min=2"`
	Email         string `json:"email"          validate:"required,email"`
	Password      string `json:"password"       validate:"required"`
	Role          string `json:"role"           validate:"omitempty,oneof=civilian corporate"`
	TermsApproved bool   `json:"terms_approved"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type awardPointsRequest struct {
	Points int `json:"points" validate:"required,gt=0"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal domain changes. PasswordHash and ResetToken have no field here.

type userResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Points       int       `json:"points"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type authResponse struct {
	Message string        `json:"message"`
	User    *userResponse `json:"user,omitempty"`
}

type resetTokenResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token"`
}

type pointsResponse struct {
	Points int `json:"points"`
}

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		Points:       u.Points,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}
