package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/procurement/config"
	"p9e.in/procurement/pkg/lifecycle"
)

func setSecret(t *testing.T) {
	t.Helper()
	prev := *config.App
	config.App.JWTSecret = "test-secret"
	config.App.JWTTTL = time.Hour
	t.Cleanup(func() { *config.App = prev })
}

func buyerSubject() TokenSubject {
	return TokenSubject{
		UserID:      uuid.New(),
		Name:        "Priya",
		Email:       "buyer@example.com",
		CompanyID:   uuid.New(),
		CompanyName: "Marine Asia Resources",
		CompanyType: lifecycle.Buyer,
	}
}

func TestJWTMiddleware(t *testing.T) {
	setSecret(t)
	sub := buyerSubject()
	token, err := GenerateToken(sub)
	require.NoError(t, err)

	var seen *Claims
	h := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClaims(r)
		actor, ok := GetActor(r)
		require.True(t, ok)
		assert.Equal(t, sub.CompanyID, actor.CompanyID)
		assert.Equal(t, lifecycle.Buyer, actor.Side)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + token, http.StatusNoContent},
		{"lowercase scheme", "bearer " + token, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/rfqs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	require.NotNil(t, seen)
	assert.Equal(t, "Marine Asia Resources", seen.CompanyName)
}

func TestJWTMiddlewareRejectsOtherSecret(t *testing.T) {
	setSecret(t)
	token, err := GenerateToken(buyerSubject())
	require.NoError(t, err)

	config.App.JWTSecret = "rotated"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	JWTMiddleware(http.NotFoundHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireCompanyType(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RequireCompanyType(lifecycle.Buyer, ok)

	tests := []struct {
		name   string
		claims *Claims
		status int
		body   string
	}{
		{"buyer allowed", &Claims{CompanyType: lifecycle.Buyer}, http.StatusOK, ""},
		{"seller refused", &Claims{CompanyType: lifecycle.Seller}, http.StatusForbidden, "only buyer companies can perform this action\n"},
		{"anonymous", nil, http.StatusUnauthorized, "unauthorized\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/rfqs", nil)
			if tt.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}
