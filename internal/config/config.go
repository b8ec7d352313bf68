// Package config loads svcdesc settings from defaults, a YAML file,
// SVCDESC__ environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// EnvPrefix is the prefix of environment overrides. Nesting uses a double
// underscore: SVCDESC__HTTP__TIMEOUT -> http.timeout.
const EnvPrefix = "SVCDESC"

// Config holds every setting the CLI reads.
type Config struct {
	// Input is the description path or http(s) URL.
	Input string `koanf:"input"`
	// Format selects the export encoding.
	Format string `koanf:"format" validate:"oneof=yaml json"`
	// Out is the export destination; empty means stdout.
	Out string `koanf:"out"`
	// Depth limits how far `model` expands nested properties.
	Depth   int          `koanf:"depth" validate:"gte=0,lte=32"`
	Verbose bool         `koanf:"verbose"`
	HTTP    HTTPConfig   `koanf:"http"`
	Import  ImportConfig `koanf:"import"`
}

type HTTPConfig struct {
	Timeout    time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRetries int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	Backoff    time.Duration `koanf:"backoff" validate:"gte=0"`
}

// ImportConfig filters operations imported from OpenAPI documents.
type ImportConfig struct {
	IncludeTags []string `koanf:"include_tags"`
	ExcludeTags []string `koanf:"exclude_tags"`
	Methods     []string `koanf:"methods" validate:"dive,oneof=get post put delete patch head options trace GET POST PUT DELETE PATCH HEAD OPTIONS TRACE"`
	Paths       []string `koanf:"paths"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Format: "yaml",
		Depth:  3,
		HTTP: HTTPConfig{
			Timeout:    10 * time.Second,
			MaxRetries: 3,
			Backoff:    200 * time.Millisecond,
		},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	msgs := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		msgs = append(msgs, fieldPath(ve)+": "+formatValidationError(ve))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// fieldPath drops the root struct name: "Config.http.timeout" -> "http.timeout".
func fieldPath(ve validator.FieldError) string {
	ns := ve.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "gt":
		return fmt.Sprintf("must be greater than %s", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
