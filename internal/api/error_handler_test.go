package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ecocollect/identity-service/internal/core/domain"
)

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"duplicate user", domain.ErrUserExists, http.StatusBadRequest},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid token", domain.ErrInvalidToken, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"invalid reset token", domain.ErrInvalidResetToken, http.StatusBadRequest},
		{"points not applicable", domain.ErrPointsNotApplicable, http.StatusUnprocessableEntity},
		{"unexpected", errors.New("store exploded"), http.StatusInternalServerError},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "bad payload"), http.StatusBadRequest},
	}

	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}

			var resp map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp["error"] == "" {
				t.Fatalf("expected error envelope, got %s", rec.Body.String())
			}
		})
	}
}

// Credential and token failures share one message, and internal detail
// never reaches the client.
func TestHTTPErrorHandler_NoOracle(t *testing.T) {
	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop())

	bodyFor := func(err error) string {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		handler(err, c)
		return rec.Body.String()
	}

	if bodyFor(domain.ErrInvalidCredentials) != bodyFor(domain.ErrInvalidToken) {
		t.Fatalf("credential and token failures must be indistinguishable")
	}

	internal := bodyFor(errors.New("mongo: connection reset at 10.0.0.7"))
	if strings.Contains(internal, "mongo") || strings.Contains(internal, "10.0.0.7") {
		t.Fatalf("internal detail leaked: %s", internal)
	}
}
