package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/tilemart/quotation-api/internal/config"
	"go.uber.org/zap"
)

// APIKey guards the API with a static key carried in the X-API-Key
// header. An empty configured key disables the check, which is only
// acceptable for local development.
func APIKey(cfg *config.ApiKeyConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	if cfg.Value == "" {
		logger.Warn("API key not configured, requests are unauthenticated")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.Value)) != 1 {
				logger.Warn("rejected request with invalid api key",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"type":"unauthorized","title":"Unauthorized","status":401}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
