package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ecocollect/identity-service/internal/core/domain"
	"github.com/ecocollect/identity-service/internal/core/ports"
)

const defaultTokenTTL = time.Hour

// jwtIssuer mints HS256-signed tokens and validates them against both the
// signature and the revocation list.
type jwtIssuer struct {
	secret  []byte
	ttl     time.Duration
	revoker ports.TokenRevoker
}

// NewTokenIssuer returns a ports.TokenIssuer backed by golang-jwt. A nil
// revoker disables the denylist check, leaving logout advisory-only.
func NewTokenIssuer(secret string, ttl time.Duration, revoker ports.TokenRevoker) ports.TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &jwtIssuer{secret: []byte(secret), ttl: ttl, revoker: revoker}
}

func (i *jwtIssuer) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(i.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Validate parses and verifies the token. Expired, malformed, forged, and
// revoked tokens all come back as domain.ErrInvalidToken.
func (i *jwtIssuer) Validate(ctx context.Context, token string) (*domain.Claims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	jti, _ := claims["jti"].(string)
	if sub == "" || role == "" {
		return nil, domain.ErrInvalidToken
	}

	if i.revoker != nil && jti != "" {
		revoked, err := i.revoker.IsRevoked(ctx, jti)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, domain.ErrInvalidToken
		}
	}

	return &domain.Claims{UserID: sub, Email: email, Role: role, JTI: jti}, nil
}

// Revoke denylists the token's jti for its remaining lifetime. Tokens
// that no longer parse or have already expired need no entry.
func (i *jwtIssuer) Revoke(ctx context.Context, token string) error {
	if i.revoker == nil {
		return nil
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	remaining := int64(time.Until(exp.Time).Seconds())
	if remaining <= 0 {
		return nil
	}

	return i.revoker.Revoke(ctx, jti, remaining)
}
