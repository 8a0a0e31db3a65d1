package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/sesadapter/pkg/mailer"
)

func newSendCmd(opts *rootOptions) *cobra.Command {
	var (
		template string
		to       string
		subject  string
		from     string
		vars     []string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send any configured template by name",
		Long: `Render a named template with the given variables and send it.
Variables are passed to the template as-is; no link, appName, username or
email values are added.`,
		Example: `  sesmail send --template weeklyDigest --to bob@example.com \
    --var username=bob --var stats.opened=12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			variables, err := parseVars(vars)
			if err != nil {
				return err
			}

			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				receipt, err := rt.adapter.Send(ctx, mailer.SendParams{
					TemplateName: template,
					Recipient:    to,
					Subject:      subject,
					FromAddress:  from,
					Variables:    variables,
				})
				if err != nil {
					return err
				}

				rt.logger.InfoContext(ctx, "email sent",
					slog.String("template", template),
					slog.String("message_id", receipt.MessageID),
				)
				printf(cmd, "%s\n", receipt.MessageID)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&template, "template", "t", "", "Template name from the config")
	f.StringVar(&to, "to", "", "Recipient email address")
	f.StringVar(&subject, "subject", "", "Override the template subject")
	f.StringVar(&from, "from", "", "Override the configured sender")
	f.StringArrayVar(&vars, "var", nil, "Template variable as key=value (repeatable, dotted keys nest)")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}
