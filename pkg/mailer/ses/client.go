package ses

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
)

const charsetUTF8 = "UTF-8"

// Config holds Amazon SES configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	AccessKeyID      string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey  string `env:"AWS_SECRET_ACCESS_KEY"`
	Region           string `env:"AWS_REGION"`
	Endpoint         string `env:"SES_ENDPOINT"`          // Optional, for local SES emulators
	ConfigurationSet string `env:"SES_CONFIGURATION_SET"` // Optional
}

func (c Config) validate() error {
	if c.AccessKeyID == "" || c.SecretAccessKey == "" || c.Region == "" {
		return ErrInvalidConfig
	}
	return nil
}

// API is the subset of the SES v2 client used here.
type API interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Message is the provider wire shape: a single simple email.
type Message struct {
	From    string
	Subject string
	To      []string
	Body    Body
}

// Body holds message bodies. HTML is optional.
type Body struct {
	Text string
	HTML string
}

// Result is returned for an accepted message.
type Result struct {
	MessageID string
}

// Client sends messages through Amazon SES.
type Client struct {
	api API
	cfg Config
}

// New creates a client bound to static credentials and a region.
// No network call is made until Send.
func New(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*sesv2.Options){
		func(o *sesv2.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			)
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *sesv2.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return &Client{
		api: sesv2.New(sesv2.Options{}, opts...),
		cfg: cfg,
	}, nil
}

// NewWithAPI creates a client around an existing SES API implementation.
func NewWithAPI(api API, cfg Config) *Client {
	return &Client{api: api, cfg: cfg}
}

// Send submits msg to SES.
func (c *Client) Send(ctx context.Context, msg *Message) (*Result, error) {
	out, err := c.api.SendEmail(ctx, c.buildInput(msg))
	if err != nil {
		return nil, wrapSESError(err)
	}

	return &Result{MessageID: aws.ToString(out.MessageId)}, nil
}

func (c *Client) buildInput(msg *Message) *sesv2.SendEmailInput {
	body := &types.Body{
		Text: content(msg.Body.Text),
	}
	if msg.Body.HTML != "" {
		body.Html = content(msg.Body.HTML)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: msg.To,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: content(msg.Subject),
				Body:    body,
			},
		},
	}

	if c.cfg.ConfigurationSet != "" {
		input.ConfigurationSetName = aws.String(c.cfg.ConfigurationSet)
	}

	return input
}

func content(data string) *types.Content {
	return &types.Content{
		Data:    aws.String(data),
		Charset: aws.String(charsetUTF8),
	}
}

// wrapSESError classifies well-known SES error codes.
// The original error stays in the chain for errors.As.
func wrapSESError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "MessageRejected", "MailFromDomainNotVerifiedException":
			return fmt.Errorf("%w: %w", ErrRejected, err)
		case "TooManyRequestsException", "LimitExceededException":
			return fmt.Errorf("%w: %w", ErrThrottled, err)
		case "AccountSuspendedException", "SendingPausedException":
			return fmt.Errorf("%w: %w", ErrSendingPaused, err)
		}
	}

	return fmt.Errorf("%w: %w", ErrSendFailed, err)
}
