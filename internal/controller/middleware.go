package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/watchparty/server/pkg/ctxlogger"
	"github.com/watchparty/server/pkg/rest"
)

func (c controller) requestIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = ctxlogger.AppendCtx(ctx, slog.String("request_id", c.stateGen.GenerateRandomString(16)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}

// authMw resolves the bearer token into a user id stored on the request
// context. Protected routes behind it can rely on a non-empty user id.
func (c controller) authMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			rest.WriteError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userId, err := c.authService.ParseToken(token)
		if err != nil {
			rest.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIdKey, userId)
		ctx = ctxlogger.AppendCtx(ctx, slog.String("user_id", userId))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) searchRateLimitMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := c.getUserIdFromCtx(r.Context())
		if key == "" {
			key = r.RemoteAddr
		}

		if !c.searchLimiter.Allow(key) {
			rest.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}

	return ""
}
