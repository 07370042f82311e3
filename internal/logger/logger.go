// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup sets the global level and output. Development gets the console
// writer; everything else logs JSON.
func Setup(level, env string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "inkframe-api").Logger()
	return log.Logger
}
