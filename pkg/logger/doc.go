// Package logger builds the slog loggers used by the adapter and the CLI.
//
// Loggers write JSON (or text) to a writer, inject request-scoped attributes
// through context extractors, and optionally mirror warnings and errors to
// Sentry:
//
//	log := logger.New(logger.Config{Level: "debug"}, logger.RequestIDExtractor())
//	ctx := logger.WithRequestID(context.Background(), "req-1")
//	log.InfoContext(ctx, "email sent")
//	// {"level":"INFO","msg":"email sent","request_id":"req-1"}
//
// NewWithSentry falls back to plain logging when the DSN is empty or Sentry
// fails to initialize. Libraries default to NewNope.
package logger
