package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/sesadapter/pkg/dnsverify"
)

var (
	buildVersion = "dev"
	buildCommit  = "none"
)

// SetVersion is called from main to inject build-time version info.
func SetVersion(version, commit string) {
	buildVersion = version
	buildCommit = commit
}

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configPath   string
	provider     string
	resendAPIKey string
	sesEndpoint  string
	sesConfigSet string
	sanitizeHTML string
	s3Bucket     string
	s3Prefix     string
	s3Endpoint   string
	redisURL     string
	logLevel     string
	logFormat    string
	cacheTTL     time.Duration
	dryRun       bool
	resolver     dnsverify.Resolver // nil means the system resolver
}

func newRootCmd(configure ...func(*rootOptions)) *cobra.Command {
	opts := &rootOptions{}
	for _, fn := range configure {
		fn(opts)
	}

	cmd := &cobra.Command{
		Use:   "sesmail",
		Short: "Send transactional email through Amazon SES",
		Long: `sesmail renders the templates declared in a mailer config file and
sends them through Amazon SES (or Resend).

Check a config and its template files:
  sesmail validate --config mailer.yaml

Send a password reset email:
  sesmail reset --config mailer.yaml --email alice@example.com \
    --username alice --link https://app.example.com/reset?t=abc --app-name Acme`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       buildVersion + " (" + buildCommit + ")",
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", envOr("SESMAIL_CONFIG", "sesmail.yaml"), "Path to the mailer config file")
	f.StringVar(&opts.provider, "provider", providerSES, "Delivery provider: ses or resend")
	f.StringVar(&opts.sesEndpoint, "ses-endpoint", os.Getenv("SES_ENDPOINT"), "Custom SES endpoint, e.g. a local emulator (overrides sesEndpoint)")
	f.StringVar(&opts.sesConfigSet, "ses-configuration-set", os.Getenv("SES_CONFIGURATION_SET"), "SES configuration set (overrides configurationSet)")
	f.StringVar(&opts.sanitizeHTML, "sanitize-html", sanitizeNone, "Filter variables placed in HTML bodies: none, strip or inline")
	f.StringVar(&opts.resendAPIKey, "resend-api-key", os.Getenv("RESEND_API_KEY"), "Resend API key (provider resend)")
	f.StringVar(&opts.s3Bucket, "s3-bucket", os.Getenv("TEMPLATES_S3_BUCKET"), "Load template files from this S3 bucket")
	f.StringVar(&opts.s3Prefix, "s3-prefix", "", "Key prefix for templates in the S3 bucket")
	f.StringVar(&opts.s3Endpoint, "s3-endpoint", os.Getenv("TEMPLATES_S3_ENDPOINT"), "Custom S3 endpoint, e.g. MinIO")
	f.StringVar(&opts.redisURL, "redis-url", os.Getenv("REDIS_URL"), "Cache template files in Redis")
	f.DurationVar(&opts.cacheTTL, "cache-ttl", 10*time.Minute, "Template cache TTL; 0 disables caching")
	f.StringVar(&opts.logLevel, "log-level", envOr("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", envOr("LOG_FORMAT", "text"), "Log format: json or text")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Print rendered emails instead of sending them")

	cmd.AddCommand(
		newValidateCmd(opts),
		newLinkCmd(opts, linkReset),
		newLinkCmd(opts, linkVerify),
		newSendCmd(opts),
		newCheckDomainCmd(opts),
	)

	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
