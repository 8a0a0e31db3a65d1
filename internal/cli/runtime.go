package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/sesadapter/pkg/cache"
	"github.com/dmitrymomot/sesadapter/pkg/logger"
	"github.com/dmitrymomot/sesadapter/pkg/mailer"
	"github.com/dmitrymomot/sesadapter/pkg/mailer/resend"
	"github.com/dmitrymomot/sesadapter/pkg/sanitizer"
	"github.com/dmitrymomot/sesadapter/pkg/storage"
)

const (
	providerSES    = "ses"
	providerResend = "resend"

	sanitizeNone   = "none"
	sanitizeStrip  = "strip"
	sanitizeInline = "inline"

	shutdownTimeout = 5 * time.Second
)

var (
	errUnknownProvider  = errors.New("unknown provider")
	errUnknownSanitizer = errors.New("unknown html sanitizer")
)

// runtime is everything a command needs to render and send email.
type runtime struct {
	adapter *mailer.Adapter
	logger  *slog.Logger
	config  mailer.Config
	hooks   []func(context.Context) error
}

// withRuntime builds the runtime, tags ctx with a request ID and runs fn.
// Shutdown hooks run after fn returns, even on failure.
func withRuntime(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, rt *runtime) error) (err error) {
	rt, err := newRuntime(cmd.Context(), opts, cmd.ErrOrStderr(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, rt.shutdown())
	}()

	ctx := logger.WithRequestID(cmd.Context(), uuid.NewString())
	return fn(ctx, rt)
}

func newRuntime(ctx context.Context, opts *rootOptions, logOut, out io.Writer) (*runtime, error) {
	rt := &runtime{}

	log, flush := logger.NewWithSentry(
		logger.Config{Output: logOut, Level: opts.logLevel, Format: opts.logFormat},
		logger.SentryConfig{
			DSN:         os.Getenv("SENTRY_DSN"),
			Environment: envOr("SENTRY_ENVIRONMENT", "production"),
			MinLevel:    slog.LevelWarn,
		},
		logger.RequestIDExtractor(),
	)
	rt.logger = log
	rt.onShutdown(func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		if !ok {
			deadline = time.Now().Add(shutdownTimeout)
		}
		flush(time.Until(deadline))
		return nil
	})

	cfg, err := mailer.LoadConfig(opts.configPath)
	if err != nil {
		return nil, rt.abort(err)
	}
	cfg.Callbacks = withBuiltinCallbacks(cfg.Callbacks)
	cfg.SESEndpoint = cmp.Or(opts.sesEndpoint, cfg.SESEndpoint)
	cfg.ConfigurationSet = cmp.Or(opts.sesConfigSet, cfg.ConfigurationSet)
	rt.config = cfg

	loader, err := rt.loader(ctx, opts, cfg)
	if err != nil {
		return nil, rt.abort(err)
	}

	mopts := []mailer.Option{
		mailer.WithLoader(loader),
		mailer.WithLogger(log),
	}

	sanitize, err := htmlSanitizer(opts.sanitizeHTML)
	if err != nil {
		return nil, rt.abort(err)
	}
	if sanitize != nil {
		mopts = append(mopts, mailer.WithHTMLSanitizer(sanitize))
	}

	sender, err := rt.sender(opts, out)
	if err != nil {
		return nil, rt.abort(err)
	}
	if sender != nil {
		mopts = append(mopts, mailer.WithSender(sender))
	}

	adapter, err := mailer.New(cfg, mopts...)
	if err != nil {
		return nil, rt.abort(err)
	}
	rt.adapter = adapter

	return rt, nil
}

// loader picks the template source and wraps it in a cache.
func (rt *runtime) loader(ctx context.Context, opts *rootOptions, cfg mailer.Config) (mailer.Loader, error) {
	loader := mailer.FileLoader()

	if opts.s3Bucket != "" {
		store, err := storage.New(storage.Config{
			Bucket:    opts.s3Bucket,
			AccessKey: cfg.AccessKeyID,
			SecretKey: cfg.SecretAccessKey,
			Region:    cfg.Region,
			Endpoint:  opts.s3Endpoint,
			Prefix:    opts.s3Prefix,
			PathStyle: opts.s3Endpoint != "",
		})
		if err != nil {
			return nil, err
		}
		loader = store
		rt.logger.Debug("loading templates from s3", slog.String("bucket", opts.s3Bucket))
	}

	if opts.cacheTTL <= 0 {
		return loader, nil
	}

	var c cache.Cache[[]byte]
	if opts.redisURL != "" {
		client, err := cache.OpenRedis(ctx, opts.redisURL)
		if err != nil {
			return nil, err
		}
		rt.onShutdown(func(context.Context) error { return client.Close() })
		c = cache.NewRedis[[]byte](client, cache.BytesMarshaler{}, cache.WithPrefix("sesmail"))
	} else {
		mem := cache.NewMemory[[]byte](cache.WithCleanupInterval(0))
		rt.onShutdown(func(context.Context) error { return mem.Close() })
		c = mem
	}

	return mailer.CachedLoader(loader, c, opts.cacheTTL), nil
}

// sender returns nil for SES; the adapter builds the SES client itself.
func (rt *runtime) sender(opts *rootOptions, out io.Writer) (mailer.Sender, error) {
	if opts.dryRun {
		return &printSender{out: out}, nil
	}

	switch opts.provider {
	case providerSES, "":
		return nil, nil
	case providerResend:
		if opts.resendAPIKey == "" {
			return nil, fmt.Errorf("%w: resend requires --resend-api-key", mailer.ErrInvalidConfig)
		}
		return resend.New(resend.Config{APIKey: opts.resendAPIKey}), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownProvider, opts.provider)
	}
}

// htmlSanitizer maps the --sanitize-html value to a bluemonday filter.
func htmlSanitizer(mode string) (func(string) string, error) {
	switch mode {
	case sanitizeNone, "":
		return nil, nil
	case sanitizeStrip:
		return sanitizer.StripHTML, nil
	case sanitizeInline:
		return sanitizer.InlineHTML, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownSanitizer, mode)
	}
}

func (rt *runtime) onShutdown(fn func(context.Context) error) {
	rt.hooks = append(rt.hooks, fn)
}

// shutdown runs hooks in reverse registration order.
func (rt *runtime) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	for _, hook := range slices.Backward(rt.hooks) {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			rt.logger.Error("shutdown hook failed", slog.Any("error", err))
		}
	}
	rt.hooks = nil
	return errors.Join(errs...)
}

func (rt *runtime) abort(err error) error {
	return errors.Join(err, rt.shutdown())
}
