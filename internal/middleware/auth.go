// Package middleware provides HTTP middleware for the service layer.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/soltodo/service-layer/internal/auth"
	"github.com/soltodo/service-layer/internal/errors"
	"github.com/soltodo/service-layer/internal/httputil"
	"github.com/soltodo/service-layer/internal/logging"
)

// Auth validates the Bearer credential on every request and stores the
// authenticated wallet public key in the request context.
func Auth(authService *auth.Service, logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteError(w, errors.InvalidCredential(nil))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				httputil.WriteError(w, errors.InvalidCredential(nil))
				return
			}

			publicKey, err := authService.VerifyToken(parts[1])
			if err != nil {
				logger.WithContext(r.Context()).WithError(err).Warn("credential validation failed")
				httputil.WriteError(w, err)
				return
			}

			ctx := logging.WithIdentity(r.Context(), publicKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identity extracts the authenticated public key from the request context.
func Identity(r *http.Request) string {
	return logging.GetIdentity(r.Context())
}
