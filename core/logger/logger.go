package logger

import (
	"io"
	"log/slog"
	"os"
)

// options holds logger construction settings.
type options struct {
	writer    io.Writer
	level     slog.Level
	json      bool
	appName   string
	addSource bool
}

// Option configures the logger created by New.
type Option func(*options)

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithJSON switches output to JSON, the format expected by log collectors
// in production environments.
func WithJSON() Option {
	return func(o *options) {
		o.json = true
	}
}

// WithWriter sets the output destination. Defaults to os.Stderr.
// Use io.Discard to silence a logger in tests.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithDevelopment configures human-readable text output at debug level
// tagged with the application name.
func WithDevelopment(appName string) Option {
	return func(o *options) {
		o.level = slog.LevelDebug
		o.json = false
		o.appName = appName
	}
}

// WithProduction configures JSON output at info level tagged with the
// application name.
func WithProduction(appName string) Option {
	return func(o *options) {
		o.level = slog.LevelInfo
		o.json = true
		o.appName = appName
	}
}

// WithSource includes source file and line information in log records.
func WithSource() Option {
	return func(o *options) {
		o.addSource = true
	}
}

// New creates a configured *slog.Logger. Without options it produces text
// output to stderr at info level.
func New(opts ...Option) *slog.Logger {
	o := &options{
		writer: os.Stderr,
		level:  slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     o.level,
		AddSource: o.addSource,
	}

	var handler slog.Handler
	if o.json {
		handler = slog.NewJSONHandler(o.writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(o.writer, handlerOpts)
	}

	log := slog.New(handler)
	if o.appName != "" {
		log = log.With(slog.String("app", o.appName))
	}
	return log
}
