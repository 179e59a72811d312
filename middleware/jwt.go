// auth/jwt.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"p9e.in/procurement/config"
	"p9e.in/procurement/pkg/lifecycle"
	"p9e.in/procurement/pkg/party"
)

func jwtKey() []byte {
	return []byte(config.App.JWTSecret)
}

// Claims are the custom payload in your JWT
type Claims struct {
	UserID      string         `json:"userId"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	CompanyID   string         `json:"companyId"`
	CompanyName string         `json:"companyName"`
	CompanyType lifecycle.Side `json:"companyType"`
	jwt.RegisteredClaims
}

// unexported type prevents collisions in context
type ctxKey int

const (
	userClaimsKey ctxKey = iota
)

// TokenSubject is what a token is issued for.
type TokenSubject struct {
	UserID      uuid.UUID
	Name        string
	Email       string
	CompanyID   uuid.UUID
	CompanyName string
	CompanyType lifecycle.Side
}

// GenerateToken creates a signed JWT valid for the configured TTL
func GenerateToken(sub TokenSubject) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      sub.UserID.String(),
		Name:        sub.Name,
		Email:       sub.Email,
		CompanyID:   sub.CompanyID.String(),
		CompanyName: sub.CompanyName,
		CompanyType: sub.CompanyType,

		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(config.App.JWTTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey())
}

// JWTMiddleware validates the token and stashes the Claims in ctx
func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, "missing Authorization header", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			http.Error(w, "invalid auth header", http.StatusUnauthorized)
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(t *jwt.Token) (interface{}, error) {
			return jwtKey(), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || !claims.CompanyType.Valid() {
			http.Error(w, "invalid token claims", http.StatusUnauthorized)
			return
		}
		if _, err := uuid.Parse(claims.CompanyID); err != nil {
			http.Error(w, "invalid token claims", http.StatusUnauthorized)
			return
		}

		// attach the full Claims object to context
		ctx := context.WithValue(r.Context(), userClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithClaims returns ctx carrying c. Used by tests and internal callers.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, userClaimsKey, c)
}

// GetClaims pulls the *Claims out of the request context (or nil)
func GetClaims(r *http.Request) *Claims {
	if c, ok := r.Context().Value(userClaimsKey).(*Claims); ok {
		return c
	}
	return nil
}

// GetActor resolves the acting company of the request.
func GetActor(r *http.Request) (party.Actor, bool) {
	c := GetClaims(r)
	if c == nil {
		return party.Actor{}, false
	}
	companyID, err := uuid.Parse(c.CompanyID)
	if err != nil {
		return party.Actor{}, false
	}
	userID, _ := uuid.Parse(c.UserID)
	return party.Actor{
		CompanyID:   companyID,
		CompanyName: c.CompanyName,
		Side:        c.CompanyType,
		UserID:      userID,
	}, true
}

// RequireCompanyType wraps a handler and only lets companies of the given
// type through.
func RequireCompanyType(side lifecycle.Side, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := GetClaims(r)
		if c == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if c.CompanyType != side {
			http.Error(w, "only "+side.Label()+" companies can perform this action", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
