package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultMaxObjectSize caps how much of a template object is read.
const DefaultMaxObjectSize = 1 << 20 // 1MB

// Config holds S3-compatible storage configuration.
type Config struct {
	Bucket    string `env:"TEMPLATES_S3_BUCKET"`
	AccessKey string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Region    string `env:"AWS_REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"TEMPLATES_S3_ENDPOINT"` // Optional, for MinIO and friends
	Prefix    string `env:"TEMPLATES_S3_PREFIX"`   // Optional key prefix, e.g. "emails/"
	PathStyle bool   `env:"TEMPLATES_S3_PATH_STYLE"`

	// MaxObjectSize limits a single read. Default: DefaultMaxObjectSize.
	MaxObjectSize int64
}

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.MaxObjectSize == 0 {
		c.MaxObjectSize = DefaultMaxObjectSize
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// ObjectAPI is the subset of the S3 client used here.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store reads template sources from an S3 bucket.
type S3Store struct {
	client ObjectAPI
	cfg    Config
}

// New creates an S3Store with static credentials.
func New(cfg Config) (*S3Store, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return &S3Store{
		client: s3.New(s3.Options{}, opts...),
		cfg:    cfg,
	}, nil
}

// NewWithClient creates an S3Store around an existing client.
func NewWithClient(client ObjectAPI, cfg Config) *S3Store {
	cfg.applyDefaults()
	return &S3Store{client: client, cfg: cfg}
}

// Load returns the object stored under the template path.
// It satisfies mailer.Loader.
func (s *S3Store) Load(ctx context.Context, name string) ([]byte, error) {
	key := s.objectKey(name)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrReadFailed)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, s.cfg.MaxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, key, err)
	}
	if int64(len(data)) > s.cfg.MaxObjectSize {
		return nil, fmt.Errorf("%w: %s", ErrObjectTooLarge, key)
	}
	return data, nil
}

// objectKey joins the configured prefix and a template path into a clean key.
func (s *S3Store) objectKey(name string) string {
	key := path.Clean("/" + path.Join(s.cfg.Prefix, name))
	return strings.TrimPrefix(key, "/")
}
