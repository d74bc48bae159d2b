package app

import (
	"errors"
	"fmt"
	"go/token"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Output formats.
const (
	FormatGo   = "go"
	FormatYAML = "yaml"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Inputs are schema files or directories containing them.
	Inputs []string `validate:"required,min=1,dive,required"`
	// OutputDir receives one file per input. Empty means the output writer.
	OutputDir string
	Package   string `validate:"required,goident"`
	Format    string `validate:"oneof=go yaml"`
	Mode      string `validate:"oneof=strict permissive"`

	LogFormat   string `validate:"oneof=text json"`
	LogLevel    string `validate:"oneof=debug info warn error"`
	Parallelism int    `validate:"min=1,max=256"`
	// MetricsAddr serves /healthz and /metrics in watch mode. Empty disables it.
	MetricsAddr string        `validate:"omitempty,hostname_port"`
	Debounce    time.Duration `validate:"min=0"`
}

// DefaultConfig returns a configuration with every optional field set.
func DefaultConfig() Config {
	return Config{
		Package:     "pipelines",
		Format:      FormatGo,
		Mode:        "permissive",
		LogFormat:   "text",
		LogLevel:    "info",
		Parallelism: 4,
		Debounce:    200 * time.Millisecond,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		return token.IsIdentifier(fl.Field().String())
	})
	return v
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, configError(verrs)
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func configError(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			if fe.Kind() == reflect.Slice {
				msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
				continue
			}
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value()))
		case "goident":
			msgs = append(msgs, fmt.Sprintf("%s %q is not a valid Go identifier", fe.Field(), fe.Value()))
		case "hostname_port":
			msgs = append(msgs, fmt.Sprintf("%s %q must be host:port", fe.Field(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
