// Package logger provides a global logger for the application
package logger

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	debug = flag.Bool("debug", false, "sets log level to debug")
	trace = flag.Bool("trace", false, "sets log level to trace")
	info  = flag.Bool("info", false, "sets log level to info (default)")
)

func initLogger() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()

	// .env is optional for a local benchmark run
	envLoaded := true
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Fatal().Err(err).Msg("Error loading .env file!")
		}
		envLoaded = false
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	environment := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if environment == "" {
		environment = "prod"
	}

	var logLevel zerolog.Level
	switch environment {
	case "dev", "test":
		logLevel = zerolog.TraceLevel
		log.Info().Str("environment", environment).Msg("Development/Test environment detected - enabling all log levels")
	case "prod":
		logLevel = zerolog.InfoLevel
	default:
		logLevel = zerolog.InfoLevel
		log.Warn().Str("environment", environment).Msg("Unknown environment - defaulting to production log level (info and above)")
	}

	if *debug {
		logLevel = zerolog.DebugLevel
		log.Info().Msg("Debug flag detected - overriding environment log level")
	} else if *trace {
		logLevel = zerolog.TraceLevel
		log.Info().Msg("Trace flag detected - overriding environment log level")
	} else if *info {
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	if !envLoaded {
		log.Debug().Msg("no .env file found, using process environment only")
	}

	switch logLevel {
	case zerolog.DebugLevel:
		log.Debug().Str("environment", environment).Msg("Debug logging enabled")
	case zerolog.TraceLevel:
		log.Trace().Str("environment", environment).Msg("Trace logging enabled")
	case zerolog.InfoLevel:
		log.Info().Str("environment", environment).Msg("Info logging enabled")
	}
}

// Init initializes the logger with the configuration from the environment
// and command line flags.
// It sets up the global logger to use zerolog with console output.
// Flags owned by the caller must be registered before Init, which parses them.
// Example usage:
//
//	logger.Init() <- inside whichever main() function in your entrypoint
//
// Then, `go run ./cmd/benchmark --debug`
func Init() {
	initLogger()
}
