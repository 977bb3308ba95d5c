// Package middleware provides HTTP middleware for the relay server.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// ClientIDKey is the context key for the authenticated client ID.
	ClientIDKey ContextKey = "client_id"

	principalKey ContextKey = "principal"
)

// principal carries the authenticated identity back up the middleware chain.
// Logging installs an empty holder before routing; Auth fills it in, so the
// request log can include the client ID even though Auth runs route-scoped
// below Logging.
type principal struct {
	clientID string
}

func withPrincipal(ctx context.Context) context.Context {
	return context.WithValue(ctx, principalKey, &principal{})
}

func recordPrincipal(ctx context.Context, clientID string) {
	if p, ok := ctx.Value(principalKey).(*principal); ok {
		p.clientID = clientID
	}
}

func principalClientID(ctx context.Context) string {
	if p, ok := ctx.Value(principalKey).(*principal); ok {
		return p.clientID
	}
	return ""
}

// Claims represents JWT claims issued by this service.
type Claims struct {
	jwt.RegisteredClaims
	ClientID string `json:"client_id"`
}

// Auth enforces either the static API key (X-API-Key header) or a bearer
// token signed with the service secret. A request with neither credential is
// rejected 401; a request with an invalid credential is rejected 403.
func Auth(apiKey, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key := r.Header.Get("X-API-Key"); key != "" {
				if key != apiKey {
					http.Error(w, `{"error":"invalid api key"}`, http.StatusForbidden)
					return
				}
				recordPrincipal(r.Context(), "api-key")
				ctx := context.WithValue(r.Context(), ClientIDKey, "api-key")
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing credentials"}`, http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization header format"}`, http.StatusForbidden)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"invalid token"}`, http.StatusForbidden)
				return
			}

			recordPrincipal(r.Context(), claims.ClientID)
			ctx := context.WithValue(r.Context(), ClientIDKey, claims.ClientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientID gets the authenticated client ID from context.
func GetClientID(ctx context.Context) string {
	if v := ctx.Value(ClientIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// NewToken issues a signed JWT for a client.
func NewToken(jwtSecret, clientID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		ClientID: clientID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
