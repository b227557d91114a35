package halctl

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var logger = zerolog.Nop()

// SetLogLevel installs a console logger on stderr at level. Unknown levels
// fall back to warn.
func SetLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
