package cli

import (
	"fmt"
	"strings"

	"github.com/mark3labs/svcdesc/internal/description"
	"github.com/spf13/cobra"
)

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format TYPE VALUE",
		Short: "Run the default value formatter",
		Long: "Format VALUE the way parameters with `format: TYPE` are filtered. Known types: " +
			strings.Join([]string{
				description.FormatDateTime,
				description.FormatDateTimeHTTP,
				description.FormatDate,
				description.FormatTime,
				description.FormatTimestamp,
				description.FormatBoolString,
			}, ", ") + ". Other types echo the value.",
		Example: strings.TrimSpace(`  svcdesc format date-time now
  svcdesc format date-time-http 2024-03-09T14:05:07Z`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := description.NewSchemaFormatter().Format(args[0], args[1])
			if err != nil {
				return describeError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
