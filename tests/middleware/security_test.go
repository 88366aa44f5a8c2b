package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tilemart/quotation-api/internal/config"
	"github.com/tilemart/quotation-api/internal/http/middleware"
)

func securityResponse(cfg *config.SecurityConfig) http.Header {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations", nil)
	middleware.SecurityHeaders(cfg)(next).ServeHTTP(rec, req)
	return rec.Header()
}

func TestSecurityHeaders_Defaults(t *testing.T) {
	h := securityResponse(&config.SecurityConfig{
		ContentTypeNosniff:    true,
		FrameOptions:          "DENY",
		XSSProtection:         "1; mode=block",
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "geolocation=()",
	})

	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", h.Get("X-XSS-Protection"))
	assert.Equal(t, "default-src 'self'", h.Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.Equal(t, "geolocation=()", h.Get("Permissions-Policy"))
	// HSTS is off unless enabled explicitly.
	assert.Empty(t, h.Get("Strict-Transport-Security"))
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SecurityConfig
		want string
	}{
		{
			"max age only",
			config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: 31536000},
			"max-age=31536000",
		},
		{
			"with subdomains",
			config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: 31536000, HSTSIncludeSubdomains: true},
			"max-age=31536000; includeSubDomains",
		},
		{
			"with subdomains and preload",
			config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: 600, HSTSIncludeSubdomains: true, HSTSPreload: true},
			"max-age=600; includeSubDomains; preload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := securityResponse(&tt.cfg)
			assert.Equal(t, tt.want, h.Get("Strict-Transport-Security"))
		})
	}
}

func TestSecurityHeaders_DisabledHeadersOmitted(t *testing.T) {
	h := securityResponse(&config.SecurityConfig{})

	for _, name := range []string{
		"X-Content-Type-Options",
		"X-Frame-Options",
		"X-XSS-Protection",
		"Content-Security-Policy",
		"Referrer-Policy",
		"Permissions-Policy",
		"Strict-Transport-Security",
	} {
		assert.Empty(t, h.Get(name), "%s should not be set", name)
	}
}
