// Package logging builds the process-wide zerolog logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/inflationfighter/price-service/config"
)

// Setup creates the root logger from cfg and installs it as log.Logger, so
// that component loggers derived with log.With() share its level and output.
func Setup(cfg config.LoggingConfig, service string) zerolog.Logger {
	return SetupWriter(cfg, service, os.Stdout)
}

// SetupWriter is Setup with an explicit output.
func SetupWriter(cfg config.LoggingConfig, service string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := out
	if cfg.Format != "json" {
		output = zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", service).Logger()
	log.Logger = logger
	return logger
}
