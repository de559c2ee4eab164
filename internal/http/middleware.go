package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/example/barbershop-booking/internal/application"
)

const requestIDHeader = "X-Request-ID"

// AdminAuthenticator verifies HTTP Basic credentials for the admin routes.
type AdminAuthenticator interface {
	Authenticate(username, password string) error
}

// RequestLogger attaches a request scoped logger and a UUID request id to the
// context and logs start and completion.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithRequestID(r.Context(), id)
			ctx = ContextWithLogger(ctx, logger)
			w.Header().Set(requestIDHeader, id)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			logger.InfoContext(ctx, "request started", "remote_addr", r.RemoteAddr)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.InfoContext(ctx, "request completed",
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

// RequireAdmin rejects requests without valid Basic credentials.
func RequireAdmin(auth AdminAuthenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="barbershop-admin", charset="UTF-8"`)
				responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{ErrorCode: "UNAUTHORIZED", Message: msgUnauthorized})
				return
			}

			if err := auth.Authenticate(username, password); err != nil {
				if errors.Is(err, application.ErrInvalidCredentials) || errors.Is(err, application.ErrUnauthorized) {
					handlerLogger(r.Context(), logger, "RequireAdmin", "Authenticate").WarnContext(r.Context(), "admin authentication failed")
					w.Header().Set("WWW-Authenticate", `Basic realm="barbershop-admin", charset="UTF-8"`)
				}
				responder.handleServiceError(r.Context(), w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit caps requests per client IP per minute. A non-positive limit
// disables it.
func RateLimit(requestsPerMinute int, logger *slog.Logger) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	responder := newResponder(logger)
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			handlerLogger(r.Context(), logger, "RateLimit", "").WarnContext(r.Context(), "rate limit exceeded", "remote_addr", r.RemoteAddr)
			responder.writeJSON(r.Context(), w, http.StatusTooManyRequests, errorResponse{ErrorCode: "RATE_LIMITED", Message: msgTooManyRequest})
		}),
	)
}
