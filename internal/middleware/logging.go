package middleware

import (
	"time"

	"mcp-host-info/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RequestLoggingMiddleware logs every HTTP request with its session
// context, duration and response size. Errors and 4xx/5xx statuses
// get elevated log levels.
func RequestLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		method := c.Method()
		path := c.Path()
		sessionID := c.Get("Mcp-Session-Id")
		if sessionID == "" {
			sessionID = "unknown"
		}

		requestLogger := logger.GetHTTPLogger(method, path, sessionID).With().
			Str("user_agent", c.Get("User-Agent")).
			Str("remote_ip", c.IP()).
			Logger()

		requestLogger.Debug().Msg("Request started")

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()
		responseSize := len(c.Response().Body())

		var logEvent *zerolog.Event
		switch {
		case err != nil:
			logEvent = requestLogger.Error().Err(err)
		case status >= 500:
			logEvent = requestLogger.Error()
		case status >= 400:
			logEvent = requestLogger.Warn()
		default:
			logEvent = requestLogger.Info()
		}

		logEvent.
			Int("status", status).
			Dur("duration", duration).
			Int("response_size", responseSize).
			Msg("Request completed")

		return err
	}
}
