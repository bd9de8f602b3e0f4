// Package logging resolves the process-wide log profile: per-binary
// defaults overridden through the environment, applied to the zerolog
// globals exactly once.
package logging

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel  = "RCONCTL_LOG_LEVEL"
	EnvLogFormat = "RCONCTL_LOG_FORMAT"
)

// Output formats accepted by Profile.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Profile is one binary's logging posture.
type Profile struct {
	Level  zerolog.Level
	Format string
}

// ProfileRuntime is the daemon default: info level, structured JSON.
func ProfileRuntime() Profile {
	return Profile{Level: zerolog.InfoLevel, Format: FormatJSON}
}

// ProfileInteractive is the CLI default: warn level, console output, so
// protocol chatter stays out of the operator's way.
func ProfileInteractive() Profile {
	return Profile{Level: zerolog.WarnLevel, Format: FormatConsole}
}

var applyOnce sync.Once

// Apply installs the profile, with environment overrides, as the global
// zerolog configuration. Later calls are no-ops; the first binary
// surface to run owns the posture.
func Apply(profile Profile) {
	applyOnce.Do(func() {
		if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
			profile.Level = lvl
		}
		if f, ok := parseFormat(os.Getenv(EnvLogFormat)); ok {
			profile.Format = f
		}

		zerolog.SetGlobalLevel(profile.Level)
		if profile.Format == FormatConsole {
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: time.RFC3339,
			})
		}
	})
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseFormat(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case FormatConsole:
		return FormatConsole, true
	case FormatJSON:
		return FormatJSON, true
	default:
		return "", false
	}
}
