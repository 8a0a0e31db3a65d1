package cli

import (
	"cmp"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/sesadapter/pkg/dnsverify"
	"github.com/dmitrymomot/sesadapter/pkg/mailer"
)

func newCheckDomainCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-domain [domain]",
		Short: "Check SPF and DMARC records of the sender domain",
		Long: `Look up the TXT records SES relies on. Without an argument the domain is
taken from fromAddress in the config file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := ""
			if len(args) == 1 {
				domain = args[0]
			} else {
				cfg, err := mailer.LoadConfig(opts.configPath)
				if err != nil {
					return err
				}
				if domain, err = dnsverify.SenderDomain(cfg.FromAddress); err != nil {
					return err
				}
			}

			report, err := dnsverify.CheckSender(cmd.Context(), opts.resolver, domain)
			if err != nil {
				return err
			}

			printf(cmd, "domain: %s\n", report.Domain)
			printf(cmd, "spf:    %s\n", cmp.Or(report.SPF, "missing"))
			printf(cmd, "dmarc:  %s\n", cmp.Or(report.DMARC, "missing"))
			return report.Err()
		},
	}
}
