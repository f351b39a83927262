package tlog

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/authform/authform/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger groups the three log streams the service writes to.
type Logger struct {
	Audit zerolog.Logger
	HTTP  zerolog.Logger
	App   zerolog.Logger
}

var (
	Audit = zerolog.Nop()
	HTTP  = zerolog.Nop()
	App   = zerolog.Nop()
)

func NewLogger(cfg config.LogConfig) *Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.LogConfig, out io.Writer) *Logger {
	level := parseLogLevel(cfg.Level)

	var output io.Writer = out

	if !cfg.Json {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	baseLogger := newBaseLogger(output, level)
	auditLogger := baseLogger

	if cfg.Streams.Audit.Enabled && cfg.Streams.Audit.File != "" {
		fileWriter, err := newFileWriter(cfg.Streams.Audit.File)
		if err != nil {
			baseLogger.Warn().Err(err).Str("path", cfg.Streams.Audit.File).Msg("Failed to open audit log file, audit events go to the main output only")
		} else {
			auditLogger = newBaseLogger(zerolog.MultiLevelWriter(output, fileWriter), level)
		}
	}

	return &Logger{
		Audit: createLogger("audit", cfg.Streams.Audit, auditLogger),
		HTTP:  createLogger("http", cfg.Streams.HTTP, baseLogger),
		App:   createLogger("app", cfg.Streams.App, baseLogger),
	}
}

func newBaseLogger(out io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(out).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(level)
}

// NewSimpleLogger is used by the short lived commands and by tests.
func NewSimpleLogger() *Logger {
	return NewLogger(config.LogConfig{
		Level: "info",
		Json:  false,
		Streams: config.LogStreams{
			HTTP:  config.LogStreamConfig{Enabled: true},
			App:   config.LogStreamConfig{Enabled: true},
			Audit: config.LogStreamConfig{Enabled: false},
		},
	})
}

func (l *Logger) Init() {
	Audit = l.Audit
	HTTP = l.HTTP
	App = l.App
	log.Logger = l.App
}

func createLogger(stream string, streamCfg config.LogStreamConfig, baseLogger zerolog.Logger) zerolog.Logger {
	if !streamCfg.Enabled {
		return zerolog.Nop()
	}
	subLogger := baseLogger.With().Str("log_stream", stream).Logger()
	if streamCfg.Level != "" {
		subLogger = subLogger.Level(parseLogLevel(streamCfg.Level))
	}
	return subLogger
}

func parseLogLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		log.Warn().Err(err).Str("level", level).Msg("Invalid log level, defaulting to info")
		parsedLevel = zerolog.InfoLevel
	}
	return parsedLevel
}
