package middleware

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/mathieu-neron/vidsource/pkg/hash"
)

// SessionCookie names the cookie that identifies a page session.
const SessionCookie = "vidsource_session"

// Logger is the package-level zerolog logger used throughout the application.
var Logger = zerolog.Nop()

// InitLogger sets up the global zerolog logger with structured JSON output.
// Level is parsed from the given string (e.g. "debug", "info", "warn", "error").
func InitLogger(level, service string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.DurationFieldInteger = true

	Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// shortHash produces a short, irreversible prefix for log correlation of
// values that must not be written raw (client IPs, session IDs).
func shortHash(v string) string {
	if v == "" {
		return ""
	}
	return hash.Prefix(v, 12)
}

// routePath returns the registered route pattern so unknown paths do not
// flood the logs with arbitrary strings.
func routePath(c fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return r.Path
	}
	return c.Path()
}

// NewRequestLogger returns a Fiber middleware that logs each request as
// structured JSON via zerolog. Raw IPs and session IDs are hashed.
func NewRequestLogger() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		evt := Logger.Info()
		if status >= 500 {
			evt = Logger.Error()
		} else if status >= 400 {
			evt = Logger.Warn()
		}

		evt.
			Str("method", c.Method()).
			Str("path", routePath(c)).
			Int("status", status).
			Dur("duration_ms", duration).
			Str("ip_hash", shortHash(c.IP())).
			Str("session_hash", shortHash(c.Cookies(SessionCookie))).
			Int("bytes_sent", len(c.Response().Body())).
			Msg("request")

		return err
	}
}
