package mailer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sesadapter/pkg/logger"
	"github.com/dmitrymomot/sesadapter/pkg/mailer/ses"
)

// Adapter sends password reset, verification and named-template emails.
// It is immutable after New and safe for concurrent use.
type Adapter struct {
	sender    Sender
	loader    Loader
	markdown  goldmark.Markdown
	renderer  *Renderer
	logger    *slog.Logger
	sanitize  func(string) string
	templates map[string]TemplateSpec
	from      string
}

// New validates cfg and builds an adapter.
// Unless WithSender is given, an SES sender bound to the configured
// credentials is created. No network or filesystem I/O happens here.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	templates, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	a := &Adapter{
		from:      cfg.FromAddress,
		templates: templates,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.sender == nil {
		client, err := ses.New(cfg.sesConfig())
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
		a.sender = NewSESSender(client)
	}
	if a.loader == nil {
		a.loader = FileLoader()
	}
	if a.renderer == nil {
		a.renderer = NewRenderer()
	}
	if a.markdown == nil {
		a.markdown = NewMarkdown()
	}
	if a.logger == nil {
		a.logger = logger.NewNope()
	}

	return a, nil
}

// Template returns the configuration of the named template.
func (a *Adapter) Template(name string) (TemplateSpec, bool) {
	spec, ok := a.templates[name]
	return spec, ok
}

// SendPasswordResetEmail sends the passwordResetEmail template to params.User.
func (a *Adapter) SendPasswordResetEmail(ctx context.Context, params LinkParams) (*Receipt, error) {
	return a.sendLink(ctx, a.linkRequest(PasswordResetEmail, params))
}

// SendVerificationEmail sends the verificationEmail template to params.User.
func (a *Adapter) SendVerificationEmail(ctx context.Context, params LinkParams) (*Receipt, error) {
	return a.sendLink(ctx, a.linkRequest(VerificationEmail, params))
}

// Send renders any configured template with the caller's variables.
// Subject resolution: params.Subject > template subject.
// Sender resolution: params.FromAddress > configured address.
func (a *Adapter) Send(ctx context.Context, params SendParams) (*Receipt, error) {
	c, err := a.resolveNamed(params)
	if err != nil {
		return nil, a.fail(ctx, params.TemplateName, params.Recipient, err)
	}
	return a.sendMail(ctx, c)
}

// VerifyTemplates loads and compiles every configured template file.
// It reports all failures at once.
func (a *Adapter) VerifyTemplates(ctx context.Context) error {
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(a.templates)) {
		spec := a.templates[name]
		for _, path := range []string{spec.PathPlainText, spec.PathHTML, spec.PathMarkdown} {
			if path == "" {
				continue
			}
			src, err := a.loader.Load(ctx, path)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w: %s: %w", name, ErrTemplateLoad, path, err))
				continue
			}
			if _, err := a.renderer.compile(string(src)); err != nil {
				errs = append(errs, fmt.Errorf("%s: %s: %w", name, path, err))
			}
		}
	}
	return errors.Join(errs...)
}

// linkRequest is a reset or verification request bound to its template.
type linkRequest struct {
	user     User
	template TemplateSpec
	name     string
	link     string
	appName  string
}

// composition is a resolved request: the envelope plus what renders its bodies.
type composition struct {
	email    *Email
	vars     Vars
	template TemplateSpec
	name     string
}

func (a *Adapter) linkRequest(name string, params LinkParams) linkRequest {
	return linkRequest{
		name:     name,
		link:     params.Link,
		appName:  params.AppName,
		user:     params.User,
		template: a.templates[name],
	}
}

func (a *Adapter) sendLink(ctx context.Context, req linkRequest) (*Receipt, error) {
	c, err := a.resolveLink(ctx, req)
	if err != nil {
		return nil, a.fail(ctx, req.name, "", err)
	}
	return a.sendMail(ctx, c)
}

// resolveLink builds the envelope and variables for a reset or verification email.
// Callback variables are applied over the fixed ones.
func (a *Adapter) resolveLink(ctx context.Context, req linkRequest) (*composition, error) {
	if req.user == nil {
		return nil, &requestError{
			kind: ErrNoUser,
			msg:  fmt.Sprintf("Cannot send email with template %s without a user", req.name),
		}
	}

	to := req.user.Get("email")
	if to == "" {
		return nil, &requestError{
			kind: ErrNoRecipient,
			msg:  fmt.Sprintf("Cannot send email with template %s without a recipient", req.name),
		}
	}

	vars := Vars{
		"link":     req.link,
		"appName":  req.appName,
		"username": req.user.Get("username"),
		"email":    to,
	}
	if req.template.Callback != nil {
		maps.Copy(vars, a.callbackVars(ctx, req))
	}

	return &composition{
		name:     req.name,
		template: req.template,
		vars:     vars,
		email: &Email{
			From:    a.from,
			To:      []string{to},
			Subject: req.template.Subject,
		},
	}, nil
}

// callbackVars runs the template callback. Output that is not a plain
// string-keyed mapping is dropped.
func (a *Adapter) callbackVars(ctx context.Context, req linkRequest) Vars {
	out := req.template.Callback(req.user)
	vars, ok := plainVars(out)
	if !ok && out != nil {
		a.logger.DebugContext(ctx, "ignoring template callback output",
			slog.String("template", req.name),
			slog.String("type", fmt.Sprintf("%T", out)),
		)
	}
	return vars
}

func plainVars(v any) (Vars, bool) {
	switch m := v.(type) {
	case Vars:
		return m, true
	case map[string]any:
		return Vars(m), true
	case map[string]string:
		vars := make(Vars, len(m))
		for k, s := range m {
			vars[k] = s
		}
		return vars, true
	}
	return nil, false
}

func (a *Adapter) resolveNamed(params SendParams) (*composition, error) {
	name := params.TemplateName
	spec, ok := a.templates[name]
	if !ok {
		return nil, &requestError{
			kind: ErrTemplateNotFound,
			msg:  "Could not find template with name " + name,
		}
	}

	subject := cmp.Or(params.Subject, spec.Subject)
	if subject == "" {
		return nil, &requestError{
			kind: ErrNoSubject,
			msg:  fmt.Sprintf("Cannot send email with template %s without a subject", name),
		}
	}
	if params.Recipient == "" {
		return nil, &requestError{
			kind: ErrNoRecipient,
			msg:  fmt.Sprintf("Cannot send email with template %s without a recipient", name),
		}
	}

	vars := params.Variables
	if vars == nil {
		vars = Vars{}
	}

	return &composition{
		name:     name,
		template: spec,
		vars:     vars,
		email: &Email{
			From:    cmp.Or(params.FromAddress, a.from),
			To:      []string{params.Recipient},
			Subject: subject,
		},
	}, nil
}

func (a *Adapter) sendMail(ctx context.Context, c *composition) (*Receipt, error) {
	if err := a.render(ctx, c); err != nil {
		return nil, a.fail(ctx, c.name, c.email.To[0], err)
	}

	receipt, err := a.sender.Send(ctx, c.email)
	if err != nil {
		return nil, a.fail(ctx, c.name, c.email.To[0], errors.Join(ErrSendFailed, err))
	}
	if receipt == nil {
		receipt = &Receipt{}
	}

	a.logger.DebugContext(ctx, "email sent",
		slog.String("template", c.name),
		slog.String("message_id", receipt.MessageID),
	)
	return receipt, nil
}

// render fills the email body. The text and HTML sources load concurrently;
// the HTML source is only read when the template has one.
func (a *Adapter) render(ctx context.Context, c *composition) error {
	var text, html string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		text, err = a.renderFile(gctx, c.template.PathPlainText, c.vars)
		return err
	})

	switch {
	case c.template.PathHTML != "":
		g.Go(func() (err error) {
			html, err = a.renderFile(gctx, c.template.PathHTML, a.htmlVars(c.vars))
			return err
		})
	case c.template.PathMarkdown != "":
		g.Go(func() error {
			md, err := a.renderFile(gctx, c.template.PathMarkdown, a.htmlVars(c.vars))
			if err != nil {
				return err
			}
			html, err = markdownToHTML(a.markdown, md)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	c.email.Body = Body{Text: text, HTML: html}
	return nil
}

func (a *Adapter) renderFile(ctx context.Context, path string, vars Vars) (string, error) {
	src, err := a.loader.Load(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTemplateLoad, path, err)
	}

	out, err := a.renderer.Render(string(src), vars)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// htmlVars applies the HTML sanitizer to top-level string values.
func (a *Adapter) htmlVars(vars Vars) Vars {
	if a.sanitize == nil {
		return vars
	}

	clean := make(Vars, len(vars))
	for k, v := range vars {
		if s, ok := v.(string); ok {
			v = a.sanitize(s)
		}
		clean[k] = v
	}
	return clean
}

func (a *Adapter) fail(ctx context.Context, template, recipient string, err error) error {
	a.logger.ErrorContext(ctx, "failed to send email",
		slog.String("template", template),
		slog.String("recipient", recipient),
		slog.String("error", err.Error()),
	)
	return err
}

var _ MailAdapter = (*Adapter)(nil)
