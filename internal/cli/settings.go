package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/svcdesc/internal/config"
	"github.com/mark3labs/svcdesc/internal/description"
	"github.com/mark3labs/svcdesc/internal/spec"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagMappings ties command-line flags to config keys. Only flags the user
// set explicitly override the config file and environment.
var flagMappings = map[string]string{
	"input":        "input",
	"format":       "format",
	"out":          "out",
	"depth":        "depth",
	"verbose":      "verbose",
	"timeout":      "http.timeout",
	"max-retries":  "http.max_retries",
	"backoff":      "http.backoff",
	"include-tags": "import.include_tags",
	"exclude-tags": "import.exclude_tags",
	"methods":      "import.methods",
	"paths":        "import.paths",
}

// addLoadFlags registers the flags shared by commands that load a description.
func addLoadFlags(flags *pflag.FlagSet) {
	flags.String("input", "", "Path or http(s) URL of the service description")
	flags.Duration("timeout", 0, "HTTP timeout per request when loading from a URL")
	flags.Int("max-retries", 0, "Attempts for transient HTTP failures")
	flags.Duration("backoff", 0, "Base delay between HTTP retries")
	flags.StringSlice("include-tags", nil, "OpenAPI import: only operations with these tags")
	flags.StringSlice("exclude-tags", nil, "OpenAPI import: drop operations with these tags")
	flags.StringSlice("methods", nil, "OpenAPI import: only these HTTP methods")
	flags.StringSlice("paths", nil, "OpenAPI import: only paths matching these regular expressions")
}

// resolveConfig merges defaults, the --config file, SVCDESC__ variables and
// explicit flags. A positional argument, when given, is the input.
func resolveConfig(cmd *cobra.Command, args []string) (config.Config, *config.Loader, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, loader, err := config.Load(strings.TrimSpace(configPath), cmd.Flags(), flagMappings)
	if err != nil {
		return config.Config{}, nil, wrapUsageError(err.Error(), err)
	}
	if len(args) > 0 {
		cfg.Input = args[0]
	}
	cfg.Input = strings.TrimSpace(cfg.Input)
	return cfg, loader, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadDescription loads cfg.Input with the HTTP and import settings of cfg.
func loadDescription(ctx context.Context, cmd *cobra.Command, cfg config.Config) (*description.Description, error) {
	if cfg.Input == "" {
		return nil, newUsageError(fmt.Sprintf("%s: an input is required (argument, --input or config file)", cmd.Name()))
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	d, err := spec.Load(ctx, cfg.Input,
		spec.WithHTTPTimeout(cfg.HTTP.Timeout),
		spec.WithMaxRetries(cfg.HTTP.MaxRetries),
		spec.WithBackoffBase(cfg.HTTP.Backoff),
		spec.WithLogger(logger),
		spec.WithImportOptions(
			spec.WithIncludeTags(cfg.Import.IncludeTags...),
			spec.WithExcludeTags(cfg.Import.ExcludeTags...),
			spec.WithMethods(cfg.Import.Methods...),
			spec.WithPathPatterns(cfg.Import.Paths...),
		),
	)
	if err != nil {
		return nil, describeError(err)
	}
	logger.Debug("loaded description", "input", cfg.Input, "operations", len(d.Operations()), "models", len(d.ModelNames()))
	return d, nil
}

// describeError maps structured loader and description errors into friendly
// usage errors; anything else is returned unchanged.
func describeError(err error) error {
	var se *spec.SpecError
	if errors.As(err, &se) {
		msg := fmt.Sprintf("spec: %s", se.Message)
		if se.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
		}
		if se.JSONPointer != "" {
			msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
		}
		return wrapUsageError(msg, err)
	}
	var de *description.Error
	if errors.As(err, &de) {
		msg := de.Message
		if de.Pointer != "" {
			msg = fmt.Sprintf("%s\nPointer: %s", msg, de.Pointer)
		}
		return wrapUsageError(msg, err)
	}
	return err
}
