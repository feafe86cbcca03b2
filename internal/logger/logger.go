package logger

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component loggers, initialized by InitLogger.
var (
	Main       zerolog.Logger
	HTTP       zerolog.Logger
	Session    zerolog.Logger
	MCP        zerolog.Logger
	Tools      zerolog.Logger
	HostInfo   zerolog.Logger
	SSE        zerolog.Logger
	Streamable zerolog.Logger
)

// InitLogger configures zerolog from the environment: LOG_LEVEL sets
// the global level, ENVIRONMENT selects console output (development)
// or JSON (production).
func InitLogger() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return file + ":" + strconv.Itoa(line)
	}

	level := getLogLevel()
	zerolog.SetGlobalLevel(level)

	if isDevelopmentMode() {
		writer := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
		writer.FormatLevel = func(i interface{}) string {
			return strings.ToUpper(i.(string))
		}
		log.Logger = zerolog.New(writer).With().Timestamp().Caller().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()
	}

	Main = log.Logger.With().Str("component", "main").Logger()
	HTTP = log.Logger.With().Str("component", "http").Logger()
	Session = log.Logger.With().Str("component", "session").Logger()
	MCP = log.Logger.With().Str("component", "mcp").Logger()
	Tools = log.Logger.With().Str("component", "tools").Logger()
	HostInfo = log.Logger.With().Str("component", "hostinfo").Logger()
	SSE = log.Logger.With().Str("component", "sse").Logger()
	Streamable = log.Logger.With().Str("component", "streamable").Logger()

	Main.Info().
		Str("level", level.String()).
		Bool("development", isDevelopmentMode()).
		Msg("Logger initialized")
}

func getLogLevel() zerolog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func isDevelopmentMode() bool {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "" {
		env = strings.ToLower(os.Getenv("ENV"))
	}
	return env == "development" || env == "dev" || env == ""
}

// GetHTTPLogger returns a request-scoped HTTP logger.
func GetHTTPLogger(method, path, sessionID string) zerolog.Logger {
	return HTTP.With().
		Str("method", method).
		Str("path", path).
		Str("session_id", sessionID).
		Logger()
}

// GetMCPLogger returns a logger scoped to one JSON-RPC method call.
func GetMCPLogger(method, sessionID string) zerolog.Logger {
	return MCP.With().
		Str("method", method).
		Str("session_id", sessionID).
		Logger()
}
