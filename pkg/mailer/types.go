package mailer

// Reserved template keys. Both are validated eagerly by New.
const (
	PasswordResetEmail = "passwordResetEmail"
	VerificationEmail  = "verificationEmail"
)

var reservedTemplates = []string{PasswordResetEmail, VerificationEmail}

// Vars holds template variables keyed by placeholder name.
type Vars map[string]any

// User is the account an email is addressed to.
// The host framework's user object only needs a string field accessor;
// "username" and "email" are always read.
type User interface {
	Get(field string) string
}

// UserFields is a map-backed User.
type UserFields map[string]string

// Get returns the named field or an empty string.
func (u UserFields) Get(field string) string {
	return u[field]
}

// VariableCallback computes extra template variables for a user.
// Only a plain string-keyed mapping (Vars, map[string]any or map[string]string)
// is honored; any other result is ignored.
type VariableCallback func(user User) any

// LinkParams is what the host passes for password reset and verification emails.
type LinkParams struct {
	User    User
	Link    string
	AppName string
}

// SendParams describes a send using any configured template.
type SendParams struct {
	Variables    Vars   // Passed to the template verbatim
	TemplateName string // Key in Config.Templates
	Recipient    string // Required
	Subject      string // Overrides the template subject
	FromAddress  string // Overrides the configured sender
}

// Body holds the rendered message bodies. An empty HTML means the message is text-only.
type Body struct {
	Text string
	HTML string
}

// Email is a fully rendered message ready for the provider.
type Email struct {
	From    string
	Subject string
	To      []string
	Body    Body
}

// Receipt is the provider's answer to an accepted message.
type Receipt struct {
	MessageID string
}
