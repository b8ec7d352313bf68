package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/svcdesc/internal/description"
	"github.com/spf13/cobra"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model NAME",
		Short: "Print a resolved model",
		Long:  "Resolve a model of the description, following $ref and extends, and print its property tree.",
		Example: strings.TrimSpace(`  svcdesc model User --input users.yaml
  svcdesc model Pet --input petstore.yaml --depth 1`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := resolveConfig(cmd, nil)
			if err != nil {
				return err
			}
			d, err := loadDescription(cmd.Context(), cmd, cfg)
			if err != nil {
				return err
			}
			if !d.HasModel(args[0]) {
				return newUsageError(fmt.Sprintf("model: %q not found (available: %s)", args[0], strings.Join(d.ModelNames(), ", ")))
			}
			m, err := d.Model(args[0])
			if err != nil {
				return describeError(err)
			}
			if err := writeParameter(cmd.OutOrStdout(), m, m.Name(), 0, cfg.Depth); err != nil {
				return describeError(err)
			}
			return nil
		},
	}
	addLoadFlags(cmd.Flags())
	cmd.Flags().Int("depth", 3, "How many levels of nested properties to expand")
	return cmd
}

// writeParameter prints p as label followed by its nested properties, items
// and additional properties, down to maxDepth levels below the root.
func writeParameter(w io.Writer, p *description.Parameter, label string, depth, maxDepth int) error {
	fmt.Fprintf(w, "%s%s%s\n", strings.Repeat("  ", depth), label, parameterAttrs(p))
	if depth >= maxDepth {
		return nil
	}
	for _, name := range p.PropertyNames() {
		child, err := p.Property(name)
		if err != nil {
			return err
		}
		if err := writeParameter(w, child, name, depth+1, maxDepth); err != nil {
			return err
		}
	}
	items, err := p.Items()
	if err != nil {
		return err
	}
	if items != nil {
		if err := writeParameter(w, items, "[]", depth+1, maxDepth); err != nil {
			return err
		}
	}
	_, extra, err := p.AdditionalProperties()
	if err != nil {
		return err
	}
	if extra != nil {
		return writeParameter(w, extra, "{*}", depth+1, maxDepth)
	}
	return nil
}

func parameterAttrs(p *description.Parameter) string {
	var attrs []string
	if t := p.Type(); t != "" {
		attrs = append(attrs, t)
	}
	if p.Required() {
		attrs = append(attrs, "required")
	}
	if f := p.Format(); f != "" {
		attrs = append(attrs, "format="+f)
	}
	if l := p.Location(); l != "" {
		attrs = append(attrs, "location="+l)
	}
	if enum := p.Enum(); len(enum) > 0 {
		attrs = append(attrs, fmt.Sprintf("enum=%v", enum))
	}
	if len(attrs) == 0 {
		return ""
	}
	return " (" + strings.Join(attrs, ", ") + ")"
}
