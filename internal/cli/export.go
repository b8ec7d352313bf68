package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [INPUT]",
		Short: "Write a description back out as YAML or JSON",
		Long: "Load a description (including OpenAPI or HCL documents) and write its array form, " +
			"the same shape the loader accepts, as YAML or JSON.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			d, err := loadDescription(cmd.Context(), cmd, cfg)
			if err != nil {
				return err
			}
			data, err := encodeDocument(d.ToArray(), cfg.Format)
			if err != nil {
				return err
			}
			if cfg.Out == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			abs, err := writeFileAtomic(cfg.Out, data, true)
			if err != nil {
				return err
			}
			newLogger(cmd.ErrOrStderr(), cfg.Verbose).Debug("exported description", "path", abs, "format", cfg.Format)
			return nil
		},
	}
	addLoadFlags(cmd.Flags())
	cmd.Flags().String("format", "yaml", "Output encoding (yaml|json)")
	cmd.Flags().String("out", "", "Output file (stdout when omitted)")
	return cmd
}

func encodeDocument(doc map[string]any, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("export: encode json: %w", err)
		}
		return append(data, '\n'), nil
	case "", "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("export: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, newUsageError(fmt.Sprintf("export: unsupported --format %q (allowed: yaml, json)", format))
	}
}

// writeFileAtomic writes data next to path and renames it into place. It
// refuses to replace an existing regular file unless force is set.
func writeFileAtomic(path string, data []byte, force bool) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	if st, err := os.Stat(absPath); err == nil && !force && st.Mode().IsRegular() {
		return "", newUsageError(fmt.Sprintf("%q already exists (use --force to overwrite)", absPath))
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", newUsageError(fmt.Sprintf("cannot create parent directory: %v", err))
	}
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", newUsageError(fmt.Sprintf("cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return "", newUsageError(fmt.Sprintf("cannot place file at %s: %v", absPath, err))
	}
	return absPath, nil
}
