package middleware

import (
	"fmt"
	"net/http"

	"github.com/tilemart/quotation-api/internal/config"
)

// SecurityHeaders returns a middleware that sets browser security
// headers on every response. The header set is fixed for the lifetime
// of the process, so it is assembled once from the config and replayed
// per request.
func SecurityHeaders(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	headers := buildSecurityHeaders(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for name, value := range headers {
				h.Set(name, value)
			}

			// Strip headers that advertise the server implementation.
			h.Del("X-Powered-By")
			h.Del("Server")

			next.ServeHTTP(w, r)
		})
	}
}

func buildSecurityHeaders(cfg *config.SecurityConfig) map[string]string {
	headers := make(map[string]string)

	if cfg.ContentTypeNosniff {
		headers["X-Content-Type-Options"] = "nosniff"
	}
	if cfg.FrameOptions != "" {
		headers["X-Frame-Options"] = cfg.FrameOptions
	}
	if cfg.XSSProtection != "" {
		headers["X-XSS-Protection"] = cfg.XSSProtection
	}
	if cfg.ContentSecurityPolicy != "" {
		headers["Content-Security-Policy"] = cfg.ContentSecurityPolicy
	}
	if cfg.ReferrerPolicy != "" {
		headers["Referrer-Policy"] = cfg.ReferrerPolicy
	}
	if cfg.PermissionsPolicy != "" {
		headers["Permissions-Policy"] = cfg.PermissionsPolicy
	}
	if cfg.EnableHSTS {
		headers["Strict-Transport-Security"] = hstsValue(cfg)
	}

	return headers
}

func hstsValue(cfg *config.SecurityConfig) string {
	value := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
	if cfg.HSTSIncludeSubdomains {
		value += "; includeSubDomains"
	}
	if cfg.HSTSPreload {
		value += "; preload"
	}
	return value
}
