package mailer

import "errors"

var (
	// ErrInvalidConfig matches every configuration error returned by New.
	ErrInvalidConfig = errors.New("mailer: invalid configuration")

	// ErrMissingCredentials indicates the sender address or an AWS credential field is empty.
	ErrMissingCredentials error = configError("AmazonSESAdapter requires valid fromAddress, accessKeyId, secretAccessKey, region.")

	// ErrTemplatesNotConfigured indicates a reserved template lacks a subject or plain-text path.
	ErrTemplatesNotConfigured error = configError("AmazonSESAdapter templates are not properly configured.")

	// ErrCallbackNotFunc indicates a reserved template names a callback that does not resolve to a function.
	ErrCallbackNotFunc error = configError("AmazonSESAdapter template callback is not a function.")

	// ErrInvalidConfigFile indicates a config file could not be read or decoded.
	ErrInvalidConfigFile = errors.New("mailer: invalid config file")

	// ErrTemplateNotFound indicates the requested template name is not configured.
	ErrTemplateNotFound = errors.New("mailer: template not found")

	// ErrNoSubject indicates neither the call nor the template provides a subject.
	ErrNoSubject = errors.New("mailer: email must have a subject")

	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("mailer: email must have a recipient")

	// ErrNoUser indicates a link email was requested without a user.
	ErrNoUser = errors.New("mailer: link email requires a user")

	// ErrTemplateLoad indicates a template file could not be read.
	ErrTemplateLoad = errors.New("mailer: failed to load template")

	// ErrRenderFailed indicates template compilation or interpolation failed.
	ErrRenderFailed = errors.New("mailer: failed to render template")

	// ErrSendFailed indicates the provider rejected or failed to deliver the message.
	ErrSendFailed = errors.New("mailer: failed to send email")
)

// configError keeps the exact host-facing message while matching ErrInvalidConfig.
type configError string

func (e configError) Error() string { return string(e) }

func (e configError) Is(target error) bool { return target == ErrInvalidConfig }

// requestError carries a host-facing message and unwraps to a sentinel.
type requestError struct {
	kind error
	msg  string
}

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Unwrap() error { return e.kind }
