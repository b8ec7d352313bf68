package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mark3labs/svcdesc/internal/description"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [INPUT]",
		Short: "Summarize a service description",
		Long:  "Print the attributes, operations and models of a service description.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			d, err := loadDescription(cmd.Context(), cmd, cfg)
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), d)
		},
	}
	addLoadFlags(cmd.Flags())
	return cmd
}

func writeSummary(out io.Writer, d *description.Description) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, row := range [][2]string{
		{"Name", d.Name()},
		{"Description", d.Description()},
		{"API version", d.APIVersion()},
		{"Base URL", d.BaseURL()},
	} {
		if row[1] != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
		}
	}

	names := d.Operations()
	fmt.Fprintf(tw, "\nOperations (%d):\n", len(names))
	for _, name := range names {
		op, err := d.Operation(name)
		if err != nil {
			return describeError(err)
		}
		line := fmt.Sprintf("  %s\t%s\t%s", op.HTTPMethod(), op.URI(), op.Name())
		if op.ResponseModel() != "" {
			line += " -> " + op.ResponseModel()
		}
		if op.Deprecated() {
			line += " (deprecated)"
		}
		fmt.Fprintln(tw, line)
	}

	models := d.ModelNames()
	fmt.Fprintf(tw, "\nModels (%d):\n", len(models))
	for _, name := range models {
		fmt.Fprintf(tw, "  %s\n", name)
	}
	return tw.Flush()
}
