package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/sesadapter/pkg/mailer"
)

type linkKind struct {
	use   string
	short string
	send  func(a *mailer.Adapter, ctx context.Context, p mailer.LinkParams) (*mailer.Receipt, error)
}

var (
	linkReset = linkKind{
		use:   "reset",
		short: "Send the password reset email",
		send:  (*mailer.Adapter).SendPasswordResetEmail,
	}
	linkVerify = linkKind{
		use:   "verify",
		short: "Send the account verification email",
		send:  (*mailer.Adapter).SendVerificationEmail,
	}
)

func newLinkCmd(opts *rootOptions, kind linkKind) *cobra.Command {
	var (
		email    string
		username string
		link     string
		appName  string
		fields   []string
	)

	cmd := &cobra.Command{
		Use:   kind.use,
		Short: kind.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := parseFields(fields)
			if err != nil {
				return err
			}
			user["email"] = email
			if username != "" {
				user["username"] = username
			}

			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				receipt, err := kind.send(rt.adapter, ctx, mailer.LinkParams{
					User:    mailer.UserFields(user),
					Link:    link,
					AppName: appName,
				})
				if err != nil {
					return err
				}

				rt.logger.InfoContext(ctx, "email sent",
					slog.String("kind", kind.use),
					slog.String("message_id", receipt.MessageID),
				)
				printf(cmd, "%s\n", receipt.MessageID)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&email, "email", "", "Recipient email address")
	f.StringVar(&username, "username", "", "Recipient username")
	f.StringVar(&link, "link", "", "Link placed in the email")
	f.StringVar(&appName, "app-name", "", "Application name shown in the email")
	f.StringArrayVar(&fields, "field", nil, "Extra user field as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("link")

	return cmd
}
