package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
	Stdout     io.Writer
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample service description",
		Long:  "Scaffold a commented service description documenting operations, parameters, models and references.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
				Stdout:     cmd.OutOrStdout(),
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", "service.yaml", "Where to write the sample description")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "service.yaml"
	}
	content := strings.TrimSpace(sampleDescriptionYAML) + "\n"
	absPath, err := writeFileAtomic(out, []byte(content), cfg.Force)
	if err != nil {
		if _, ok := err.(usageError); ok {
			return newUsageError("init: " + err.Error())
		}
		return fmt.Errorf("init: %w", err)
	}
	if cfg.Stdout != nil {
		fmt.Fprintf(cfg.Stdout, "Wrote sample description to %s\n", absPath)
	}
	return nil
}

// sampleDescriptionYAML documents the recognized keys by example.
const sampleDescriptionYAML = `# svcdesc service description (YAML)
# Load it with: svcdesc inspect service.yaml

name: Users
apiVersion: "2024-01-01"
description: Manage user accounts.
baseUrl: https://api.example.com/v1

# Keys other than operations, models, name, apiVersion, description and
# baseUrl are kept as extra data.
# x-team: identity

operations:
  GetUser:
    httpMethod: GET
    uri: /users/{id}
    summary: Fetch one user
    responseModel: User
    parameters:
      id:
        type: string
        location: uri
        required: true
  ListUsers:
    httpMethod: GET
    uri: /users
    responseModel: UserList
    parameters:
      since:
        $ref: Date
        location: query
      limit:
        type: integer
        location: query
        default: 20
        minimum: 1
        maximum: 100

models:
  # $ref copies the target; keys the target lacks are kept.
  Date:
    type: string
    format: date
  User:
    type: object
    properties:
      id: {type: string}
      email: {type: string, pattern: "^.+@.+$"}
      dob: {$ref: Date}
  # extends copies the parent; local keys win.
  Admin:
    extends: User
    description: A user with elevated rights.
  UserList:
    type: array
    items: {$ref: User}
`
