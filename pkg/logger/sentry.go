package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel selects what reaches Sentry: slog.LevelWarn for warnings and errors,
	// slog.LevelError for errors only.
	MinLevel slog.Level
}

// NewWithSentry creates a logger that writes locally and mirrors to Sentry.
// The returned flush function waits for buffered Sentry events; it is a
// no-op when Sentry is disabled.
func NewWithSentry(cfg Config, scfg SentryConfig, extractors ...ContextExtractor) (*slog.Logger, func(time.Duration)) {
	local := newHandler(cfg)
	noflush := func(time.Duration) {}

	if scfg.DSN == "" {
		return slog.New(NewLogHandlerDecorator(local, extractors...)), noflush
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         scfg.DSN,
		Environment: scfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(local, extractors...)), noflush
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if scfg.MinLevel >= slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	combined := newMultiHandler(local, remote)
	flush := func(d time.Duration) { sentry.Flush(d) }

	return slog.New(NewLogHandlerDecorator(combined, extractors...)), flush
}
