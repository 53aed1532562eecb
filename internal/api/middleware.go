/*-------------------------------------------------------------------------
 *
 * middleware.go
 *    HTTP middleware for the FormGen API
 *
 * Provides authentication, CORS, logging, and security header
 * middleware for the FormGen HTTP API server.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/api/middleware.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/formgen/server/internal/auth"
	"github.com/formgen/server/internal/metrics"
)

type contextKey string

const userIDContextKey contextKey = "user_id"
const claimsContextKey contextKey = "claims"

/* publicPaths are reachable without a token. Form submission is public
 * by design: respondents are not FormGen users. */
func isPublicPath(r *http.Request) bool {
	path := r.URL.Path
	if path == "/health" || path == "/metrics" {
		return true
	}
	if r.Method == http.MethodPost && strings.HasPrefix(path, "/api/v1/submissions/") {
		return true
	}
	if r.Method == http.MethodGet && path == "/api/v1/forms/templates/list" {
		return true
	}
	if r.Method == http.MethodGet && strings.HasPrefix(path, "/api/v1/forms/") {
		/* Public form rendering; ownership is enforced in the handler
		 * for non-public forms. */
		return true
	}
	return false
}

/* isRateLimitedPath scopes the per-user limit to generation, the one
 * endpoint that spends LLM quota per request */
func isRateLimitedPath(r *http.Request) bool {
	return r.Method == http.MethodPost && r.URL.Path == "/api/v1/forms/generate"
}

/* AuthMiddleware authenticates requests using bearer JWTs */
func AuthMiddleware(tokens *auth.TokenManager, rateLimiter *auth.RateLimiter, requestsPerMin int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			authHeader := r.Header.Get("Authorization")

			if isPublicPath(r) {
				/* Optional auth: attach the user when a valid token is
				 * presented so handlers can apply ownership rules,
				 * otherwise continue anonymously. */
				if parts := strings.Fields(authHeader); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					if userID, claims, err := tokens.Validate(parts[1]); err == nil {
						ctx := context.WithValue(r.Context(), userIDContextKey, userID)
						ctx = context.WithValue(ctx, claimsContextKey, claims)
						ctx = metrics.WithUserIDLogContext(ctx, userID)
						r = r.WithContext(ctx)
					}
				}
				next.ServeHTTP(w, r)
				return
			}

			if authHeader == "" {
				respondError(w, WrapError(ErrUnauthorized, requestID))
				return
			}

			/* Extract token (format: "Bearer <token>") */
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respondError(w, WrapError(ErrUnauthorized, requestID))
				return
			}

			userID, claims, err := tokens.Validate(parts[1])
			if err != nil {
				metrics.WarnWithContext(r.Context(), "Token validation failed", map[string]interface{}{
					"error": err.Error(),
				})
				respondError(w, WrapError(ErrUnauthorized, requestID))
				return
			}

			if rateLimiter != nil && requestsPerMin > 0 && isRateLimitedPath(r) {
				if !rateLimiter.CheckLimit(userID.String(), requestsPerMin) {
					respondError(w, WrapError(NewError(http.StatusTooManyRequests, "rate limit exceeded", nil), requestID))
					return
				}
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			ctx = context.WithValue(ctx, claimsContextKey, claims)
			ctx = metrics.WithUserIDLogContext(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

/* GetUserID returns the authenticated user ID, if any */
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	return id, ok
}

/* SecurityHeadersMiddleware adds security headers to all HTTP responses */
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

/* CORSMiddleware adds CORS headers */
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

/* LoggingMiddleware logs requests with structured logging and metrics */
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		metrics.RecordHTTPRequest(r.Method, r.URL.Path, wrapped.statusCode, duration)
		metrics.InfoWithContext(r.Context(), "Request completed", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapped.statusCode,
			"duration_ms": duration.Milliseconds(),
		})
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
