/**
 * @description
 * Authentication and rate limiting middleware. Two caller classes exist: the
 * renewal trigger authenticates with a long-lived shared secret, and member
 * endpoints authenticate with a session JWT.
 */
package api

import (
	"context"
	"crypto/hmac"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/protonmedicare/enrollment-service/internal/app"
)

type contextKey string

// UserIDContextKey is the key used to store the user ID in the request context.
const UserIDContextKey = contextKey("userID")

// CronAuthMiddleware authorizes scheduler trigger calls against a shared
// secret. The comparison is constant-time, and a mismatch rejects the whole
// request before any work is read.
func CronAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			authHeader := r.Header.Get("Authorization")
			provided := strings.TrimPrefix(authHeader, "Bearer ")
			if authHeader == "" || provided == authHeader {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !hmac.Equal([]byte(provided), []byte(secret)) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SessionAuthMiddleware validates member session JWTs (HS256) and injects the
// user ID into context.
func SessionAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			userID, ok := claims["sub"].(string)
			if !ok || userID == "" {
				http.Error(w, "User ID not found in token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware bounds request rates per authenticated user (falling
// back to remote address). Redis errors fail open so the limiter cannot take
// enrollment down with it.
func RateLimitMiddleware(limiter *app.EnrollmentRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := r.RemoteAddr
			if userID, ok := UserFromContext(r.Context()); ok {
				key = userID
			}

			allowed, retryAfter, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Printf("WARN: rate limiter unavailable, allowing request: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				seconds := int(retryAfter.Seconds())
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext retrieves the user ID from the request context.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(string)
	return userID, ok
}
