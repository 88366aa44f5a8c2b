package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/tilemart/quotation-api/internal/config"
	"go.uber.org/zap"
)

// CORS returns the cross-origin middleware for the API. Methods,
// headers, and max age come straight from config; the origin policy
// depends on both config and environment, see resolveOriginPolicy.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	resolveOriginPolicy(&options, cfg, environment, logger)
	return cors.Handler(options)
}

// resolveOriginPolicy decides which origins the API accepts.
//
// A configured "*" or an empty list in development opens the API to any
// origin. An empty list outside development denies every cross-origin
// request; the deny must be an AllowOriginFunc because the underlying
// library treats an empty AllowedOrigins list as a wildcard.
func resolveOriginPolicy(options *cors.Options, cfg *config.CORSConfig, environment string, logger *zap.Logger) {
	dev := environment == "development" || environment == "local" || environment == ""

	switch {
	case hasWildcard(cfg.AllowedOrigins):
		if !dev {
			logger.Warn("wildcard CORS origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = allowAnyOrigin

	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS origins configured",
			zap.Strings("origins", cfg.AllowedOrigins))

	case dev:
		options.AllowOriginFunc = allowAnyOrigin
		logger.Info("no CORS origins configured, allowing all in development")

	default:
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
		logger.Warn("no CORS origins configured, denying all cross-origin requests",
			zap.String("environment", environment))
	}
}

func hasWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func allowAnyOrigin(r *http.Request, origin string) bool {
	return origin != ""
}
