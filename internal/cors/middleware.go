// Package cors implements the browser cross-origin policy for the API.
package cors

import (
	"net/http"

	"go.uber.org/zap"
)

type Middleware struct {
	logger       *zap.Logger
	allowOrigins map[string]bool
}

func NewMiddleware(logger *zap.Logger, allowOrigins []string) *Middleware {
	allowed := make(map[string]bool, len(allowOrigins))
	for _, origin := range allowOrigins {
		allowed[origin] = true
	}
	return &Middleware{
		logger:       logger,
		allowOrigins: allowed,
	}
}

func (m *Middleware) HandlerFunc(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && m.allowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// allowed treats an empty allow-list as same-origin-only deployment behind a
// proxy, where the browser never sends a cross-origin request anyway.
func (m *Middleware) allowed(origin string) bool {
	if len(m.allowOrigins) == 0 {
		return false
	}
	return m.allowOrigins[origin]
}
