package cli

import (
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the configuration after merging defaults, the --config file, SVCDESC__ environment variables and flags.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, loader, err := resolveConfig(cmd, nil)
			if err != nil {
				return err
			}
			return loader.DumpYAML(cmd.OutOrStdout())
		},
	}
	addLoadFlags(cmd.Flags())
	return cmd
}
