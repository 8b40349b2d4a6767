package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	requestIDKey contextKey = "request_id"
)

// Auth validates JWT bearer tokens and issues new ones.
type Auth struct {
	secret []byte
	ttl    time.Duration
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret), ttl: 24 * time.Hour}
}

type authClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token for the user.
func (a *Auth) IssueToken(userID string) (string, error) {
	claims := authClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Middleware parses the Authorization header when present and puts the user
// id on the context. It never rejects: the checkout login gate, not the
// middleware, decides what an anonymous visitor may do.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(header[len("Bearer "):], claims,
			func(*jwt.Token) (interface{}, error) { return a.secret, nil })
		if err != nil || !token.Valid || claims.UserID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDMiddleware adds a unique request ID to each request.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getUserIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// visitorID keys pre-login checkout snapshots. Browsers send a stable value
// in X-Visitor-ID; without one the request id stands in.
func visitorID(r *http.Request) string {
	if v := r.Header.Get("X-Visitor-ID"); v != "" {
		return v
	}
	return getRequestID(r.Context())
}
