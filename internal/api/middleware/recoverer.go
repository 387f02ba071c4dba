// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"runtime/debug"

	xglog "github.com/ManuGH/sessiond/internal/log"
)

// Recoverer converts handler panics into 500 responses instead of taking the
// whole daemon down with one request.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger := xglog.WithComponentFromContext(r.Context(), "http")
				logger.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("handler panic recovered")
				http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
