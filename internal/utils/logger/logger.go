// Package logger provides a global logger for the application
package logger

import (
	"flag"
	"io"
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

	logFile *os.File
)

// DefaultEnvironment matches the ENVIRONMENT default in internal/config.
const DefaultEnvironment = "dev"

type options struct {
	environment string
	file        string
	defaultFile string
}

// Option tweaks Init.
type Option func(*options)

// WithEnvironment sets the environment that picks the log level, normally the
// parsed config value. Without it ENVIRONMENT is read directly.
func WithEnvironment(environment string) Option {
	return func(o *options) { o.environment = environment }
}

// WithFile sends logs to path, normally the parsed LOG_FILE value.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithDefaultFile sends logs to path when no file is configured. Programs that own
// the terminal use this to keep log lines off the screen.
func WithDefaultFile(path string) Option {
	return func(o *options) { o.defaultFile = path }
}

func initLogger(o options) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not loaded; continuing with existing environment")
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if !flag.Parsed() {
		flag.Parse()
	}

	out, target := openOutput(o)
	log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger()

	environment := o.environment
	if environment == "" {
		environment = os.Getenv("ENVIRONMENT")
	}
	environment = strings.ToLower(strings.TrimSpace(environment))
	if environment == "" {
		environment = DefaultEnvironment
	}

	logLevel := levelFor(environment)

	if *debug {
		logLevel = zerolog.DebugLevel
		log.Info().Msg("Debug flag detected - overriding environment log level")
	} else if *trace {
		logLevel = zerolog.TraceLevel
		log.Info().Msg("Trace flag detected - overriding environment log level")
	} else if *info {
		logLevel = zerolog.InfoLevel
		log.Info().Msg("Info flag detected - overriding environment log level")
	}

	zerolog.SetGlobalLevel(logLevel)

	log.Info().
		Str("environment", environment).
		Str("level", logLevel.String()).
		Str("output", target).
		Msg("logger initialized")
}

func levelFor(environment string) zerolog.Level {
	switch environment {
	case "dev", "test":
		return zerolog.TraceLevel
	case "prod":
		return zerolog.InfoLevel
	default:
		log.Warn().Str("environment", environment).Msg("Unknown environment - defaulting to production log level (info and above)")
		return zerolog.InfoLevel
	}
}

func openOutput(o options) (io.Writer, string) {
	path := o.file
	if path == "" {
		path = os.Getenv("LOG_FILE")
	}
	if path == "" {
		path = o.defaultFile
	}
	if path == "" {
		return zerolog.ConsoleWriter{Out: os.Stderr}, "stderr"
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("cannot open log file, logging to stderr")
		return zerolog.ConsoleWriter{Out: os.Stderr}, "stderr"
	}
	logFile = f
	return zerolog.ConsoleWriter{Out: f, NoColor: true}, path
}

// Init initializes the logger with the configuration from the environment
// and command line flags.
// Example usage:
//
//	logger.Init() <- inside whichever main() function in your entrypoint
//
// Then, `go run ./cmd/chat --debug`
func Init(opts ...Option) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	initLogger(o)
}

// Close releases the log file opened by Init, if any.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
