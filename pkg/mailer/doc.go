// Package mailer sends account emails (password reset, verification) and
// arbitrary named templates through Amazon SES.
//
// # Configuration
//
// An Adapter is built from a Config that names the sender address, AWS
// credentials and a set of templates. The two reserved templates,
// passwordResetEmail and verificationEmail, must be present with a subject
// and a plain-text path:
//
//	cfg := mailer.Config{
//		FromAddress:     "SuperCoolApp <noreply@supercoolapp.com>",
//		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
//		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
//		Region:          "eu-west-1",
//		Templates: map[string]mailer.TemplateSpec{
//			mailer.PasswordResetEmail: {
//				Subject:       "Reset your password",
//				PathPlainText: "templates/password_reset_email.txt",
//				PathHTML:      "templates/password_reset_email.html",
//			},
//			mailer.VerificationEmail: {
//				Subject:       "Confirm your account",
//				PathPlainText: "templates/verification_email.txt",
//				Callback: func(u mailer.User) any {
//					return mailer.Vars{"firstName": u.Get("firstName")}
//				},
//			},
//		},
//	}
//
//	adapter, err := mailer.New(cfg)
//
// The same structure can be read from YAML with LoadConfig; ${VAR}
// references are expanded from the environment and callbacks are referenced
// by name through Config.Callbacks.
//
// # Templates
//
// Template files use {{name}} placeholders; whitespace inside the braces is
// ignored and dotted paths reach into nested maps. Values are inserted
// without HTML escaping. Reset and verification emails receive link,
// appName, username and email, merged with the callback's output (callback
// keys win). Send passes the caller's variables through unchanged.
//
// A template may provide pathMarkdown instead of pathHtml; the rendered
// markdown is converted to HTML with goldmark, and [!button|Label](url)
// becomes a styled call-to-action link.
//
// # Errors
//
// Configuration errors carry fixed messages and match ErrInvalidConfig.
// Request errors match ErrTemplateNotFound, ErrNoSubject, ErrNoRecipient,
// ErrNoUser, ErrTemplateLoad, ErrRenderFailed or ErrSendFailed. Provider
// errors stay in the chain, so ses.ErrThrottled and friends can be checked
// with errors.Is.
package mailer
