package cli

import (
	"context"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file and every template it references",
		Long: `Load the config, construct the adapter, then load and compile each
template file. All template problems are reported together.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				if err := rt.adapter.VerifyTemplates(ctx); err != nil {
					return err
				}

				names := slices.Sorted(maps.Keys(rt.config.Templates))
				for _, name := range names {
					spec, _ := rt.adapter.Template(name)
					printf(cmd, "%-24s %s\n", name, spec.Subject)
				}
				printf(cmd, "config OK: %d templates\n", len(names))
				return nil
			})
		},
	}
}
