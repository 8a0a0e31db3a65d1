package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/sesadapter/pkg/dnsverify"
	"github.com/dmitrymomot/sesadapter/pkg/mailer"
)

// writeConfig lays out a config file and its templates in a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"reset.txt":  "Hi {{username}}, reset your {{appName}} password: {{link}}",
		"reset.html": `<p>Hi {{username}}</p><a href="{{link}}">Reset</a>`,
		"verify.txt": "Confirm {{email}} for {{appName}}: {{link}} ({{plan}})",
		"digest.txt": "{{username}} opened {{stats.opened}} emails",
		"digest.md":  "# Weekly digest\n\n[!button|Open]({{link}})",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	cfg := fmt.Sprintf(`
fromAddress: "Acme <noreply@acme.test>"
accessKeyId: AKIDEXAMPLE
secretAccessKey: secret
region: us-east-1
templates:
  passwordResetEmail:
    subject: Reset your password
    pathPlainText: %[1]s/reset.txt
    pathHtml: %[1]s/reset.html
  verificationEmail:
    subject: Confirm your account
    pathPlainText: %[1]s/verify.txt
    callback: userFields
  weeklyDigest:
    subject: Your weekly digest
    pathPlainText: %[1]s/digest.txt
    pathMarkdown: %[1]s/digest.md
`, dir)

	path := filepath.Join(dir, "sesmail.yml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// decodeEmails parses dry-run output back into documents.
func decodeEmails(t *testing.T, out string) []printedEmail {
	t.Helper()

	var emails []printedEmail
	dec := yaml.NewDecoder(strings.NewReader(out))
	for {
		var e printedEmail
		if err := dec.Decode(&e); err != nil {
			break
		}
		if e.MessageID != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)

	out, _, err := runCLI(t, "validate", "--config", cfg)
	require.NoError(t, err)
	require.Contains(t, out, "passwordResetEmail")
	require.Contains(t, out, "Your weekly digest")
	require.Contains(t, out, "config OK: 3 templates")
}

func TestValidateCommand_MissingTemplate(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(cfg), "digest.md")))

	_, _, err := runCLI(t, "validate", "--config", cfg, "--cache-ttl", "0")
	require.ErrorIs(t, err, mailer.ErrTemplateLoad)
	require.ErrorContains(t, err, "weeklyDigest")
}

func TestValidateCommand_BadConfig(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, "validate", "--config", filepath.Join(t.TempDir(), "absent.yml"))
	require.ErrorIs(t, err, mailer.ErrInvalidConfigFile)
}

func TestResetCommand_DryRun(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)

	out, _, err := runCLI(t, "reset", "--config", cfg, "--dry-run",
		"--email", "alice@example.com",
		"--username", "alice",
		"--link", "https://acme.test/reset?t=1",
		"--app-name", "Acme",
	)
	require.NoError(t, err)

	emails := decodeEmails(t, out)
	require.Len(t, emails, 1)
	e := emails[0]
	require.Equal(t, "Acme <noreply@acme.test>", e.From)
	require.Equal(t, []string{"alice@example.com"}, e.To)
	require.Equal(t, "Reset your password", e.Subject)
	require.Equal(t, "Hi alice, reset your Acme password: https://acme.test/reset?t=1", e.Text)
	require.Equal(t, `<p>Hi alice</p><a href="https://acme.test/reset?t=1">Reset</a>`, e.HTML)
	require.Contains(t, out, e.MessageID+"\n")
}

func TestResetCommand_SanitizeHTML(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)
	args := []string{"reset", "--config", cfg, "--dry-run",
		"--email", "alice@example.com",
		"--username", "<script>x</script><b>alice</b>",
		"--link", "https://acme.test/reset",
		"--app-name", "Acme",
	}

	out, _, err := runCLI(t, append(args, "--sanitize-html", "strip")...)
	require.NoError(t, err)

	emails := decodeEmails(t, out)
	require.Len(t, emails, 1)
	require.Equal(t, `<p>Hi alice</p><a href="https://acme.test/reset">Reset</a>`, emails[0].HTML)
	require.Contains(t, emails[0].Text, "<b>alice</b>")

	_, _, err = runCLI(t, append(args, "--sanitize-html", "aggressive")...)
	require.ErrorIs(t, err, errUnknownSanitizer)
}

func TestHTMLSanitizer(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"", sanitizeNone} {
		fn, err := htmlSanitizer(mode)
		require.NoError(t, err)
		require.Nil(t, fn)
	}

	fn, err := htmlSanitizer(sanitizeInline)
	require.NoError(t, err)
	require.Equal(t, "<b>bold</b>", fn(`<b>bold</b><img src="x">`))
}

func TestVerifyCommand_BuiltinCallback(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)

	out, _, err := runCLI(t, "verify", "--config", cfg, "--dry-run",
		"--email", "bob@example.com",
		"--link", "https://acme.test/verify",
		"--app-name", "Acme",
		"--field", "plan=pro",
	)
	require.NoError(t, err)

	emails := decodeEmails(t, out)
	require.Len(t, emails, 1)
	require.Equal(t, "Confirm bob@example.com for Acme: https://acme.test/verify (pro)", emails[0].Text)
	require.Empty(t, emails[0].HTML)
}

func TestSendCommand_DryRun(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)

	out, _, err := runCLI(t, "send", "--config", cfg, "--dry-run",
		"--template", "weeklyDigest",
		"--to", "bob@example.com",
		"--from", "Digest <digest@acme.test>",
		"--var", "username=bob",
		"--var", "stats.opened=12",
		"--var", "link=https://acme.test/digest",
	)
	require.NoError(t, err)

	emails := decodeEmails(t, out)
	require.Len(t, emails, 1)
	require.Equal(t, "Digest <digest@acme.test>", emails[0].From)
	require.Equal(t, "Your weekly digest", emails[0].Subject)
	require.Equal(t, "bob opened 12 emails", emails[0].Text)
	require.Contains(t, emails[0].HTML, `class="btn"`)
	require.Contains(t, emails[0].HTML, "https://acme.test/digest")
}

func TestSendCommand_Errors(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)

	_, _, err := runCLI(t, "send", "--config", cfg, "--dry-run", "--template", "missing", "--to", "a@b.com")
	require.ErrorIs(t, err, mailer.ErrTemplateNotFound)

	_, _, err = runCLI(t, "send", "--config", cfg, "--dry-run", "--template", "weeklyDigest")
	require.ErrorIs(t, err, mailer.ErrNoRecipient)

	_, _, err = runCLI(t, "send", "--config", cfg, "--dry-run", "--template", "weeklyDigest", "--to", "a@b.com", "--var", "novalue")
	require.ErrorIs(t, err, errInvalidVar)

	_, _, err = runCLI(t, "send", "--config", cfg, "--provider", "carrier-pigeon", "--template", "weeklyDigest", "--to", "a@b.com")
	require.ErrorIs(t, err, errUnknownProvider)

	_, _, err = runCLI(t, "send", "--config", cfg, "--provider", "resend", "--resend-api-key", "", "--template", "weeklyDigest", "--to", "a@b.com")
	require.ErrorIs(t, err, mailer.ErrInvalidConfig)
}

func TestParseVars(t *testing.T) {
	t.Parallel()

	vars, err := parseVars([]string{"username=bob", "stats.opened=12", "stats.clicked=3", "note=a=b"})
	require.NoError(t, err)
	require.Equal(t, mailer.Vars{
		"username": "bob",
		"note":     "a=b",
		"stats":    map[string]any{"opened": "12", "clicked": "3"},
	}, vars)

	for _, bad := range []string{"novalue", "=x", "a..b=1", "a.=1"} {
		_, err := parseVars([]string{bad})
		require.ErrorIs(t, err, errInvalidVar, bad)
	}

	for _, conflict := range [][]string{
		{"a=1", "a.b=2"},
		{"a.b=2", "a=1"},
		{"a.b=1", "a.b.c=2"},
	} {
		_, err := parseVars(conflict)
		require.ErrorIs(t, err, errInvalidVar, conflict)
	}

	vars, err = parseVars([]string{"a=1", "a=2"})
	require.NoError(t, err)
	require.Equal(t, mailer.Vars{"a": "2"}, vars)
}

func TestBuiltinCallbacks(t *testing.T) {
	t.Parallel()

	custom := func(mailer.User) any { return nil }
	merged := withBuiltinCallbacks(map[string]mailer.VariableCallback{"userFields": custom, "other": custom})
	require.Len(t, merged, 2)
	require.Nil(t, merged["userFields"](mailer.UserFields{"a": "b"}))

	fields := builtinCallbacks["userFields"](mailer.UserFields{"plan": "pro"})
	require.Equal(t, mailer.Vars{"plan": "pro"}, fields)
}

type staticResolver map[string][]string

func (r staticResolver) LookupTXT(_ context.Context, name string) ([]string, error) {
	return r[name], nil
}

func TestCheckDomainCommand(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)
	resolver := staticResolver{
		"acme.test":        {"v=spf1 include:amazonses.com ~all"},
		"_dmarc.acme.test": {"v=DMARC1; p=none"},
	}
	withResolver := func(o *rootOptions) { o.resolver = resolver }

	var stdout bytes.Buffer
	cmd := newRootCmd(withResolver)
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"check-domain", "--config", cfg})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Contains(t, stdout.String(), "domain: acme.test")
	require.Contains(t, stdout.String(), "dmarc:  v=DMARC1; p=none")

	stdout.Reset()
	cmd = newRootCmd(withResolver)
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"check-domain", "other.test"})
	require.ErrorIs(t, cmd.ExecuteContext(context.Background()), dnsverify.ErrSPFMissing)
	require.Contains(t, stdout.String(), "spf:    missing")
}
