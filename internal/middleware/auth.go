package middleware

import (
	"os"
	"strings"

	"mcp-host-info/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// AuthConfig configures the API-key check for MCP endpoints.
type AuthConfig struct {
	// APIKey is the expected X-API-Key value. Empty disables the check.
	APIKey string
	// AllowedUserAgents are User-Agent prefixes admitted without a key
	// (IDE clients that cannot set custom headers).
	AllowedUserAgents []string
	// SkipPaths are exempt from the check entirely.
	SkipPaths []string
}

// AuthMiddleware builds the default auth middleware: the key comes
// from MCP_API_KEY, Cursor clients are admitted by User-Agent.
func AuthMiddleware() fiber.Handler {
	return AuthMiddlewareWithConfig(AuthConfig{
		APIKey:            os.Getenv("MCP_API_KEY"),
		AllowedUserAgents: []string{"Cursor/"},
		SkipPaths:         []string{"/"},
	})
}

// AuthMiddlewareWithConfig builds an auth middleware from an explicit
// configuration.
func AuthMiddlewareWithConfig(config AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if config.APIKey == "" {
			return c.Next()
		}

		path := c.Path()
		userAgent := c.Get("User-Agent")
		apiKey := c.Get("X-API-Key")

		authLogger := logger.HTTP.With().
			Str("session_id", c.Get("Mcp-Session-Id", "unknown")).
			Str("method", c.Method()).
			Str("path", path).
			Str("remote_ip", c.IP()).
			Str("user_agent", userAgent).
			Logger()

		for _, skipPath := range config.SkipPaths {
			if path == skipPath {
				authLogger.Debug().
					Str("skip_reason", "path_in_skip_list").
					Msg("Auth check skipped")
				return c.Next()
			}
		}

		for _, allowedUA := range config.AllowedUserAgents {
			if strings.HasPrefix(userAgent, allowedUA) {
				authLogger.Debug().Msg("Allowed client detected - skipping API key check")
				return c.Next()
			}
		}

		if apiKey != config.APIKey {
			authLogger.Warn().
				Str("provided_api_key", maskAPIKey(apiKey)).
				Msg("Client with invalid API key")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Unauthorized",
				"message": "API key required",
				"code":    "AUTH_INVALID_API_KEY",
			})
		}

		authLogger.Debug().Msg("Client authorized with valid API key")
		return c.Next()
	}
}

// maskAPIKey hides most of a key for safe logging.
func maskAPIKey(key string) string {
	if key == "" {
		return "empty"
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "***" + key[len(key)-4:]
}
