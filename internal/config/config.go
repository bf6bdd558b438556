package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const ConfigurationName = "config.yaml"

// ErrInvalid wraps every semantic validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Configuration struct {
	// MaxLineLength bounds a single read from the terminal; longer input is
	// handed to the parser in several pieces.
	MaxLineLength int `json:"max_line_length" validate:"gte=1,lte=65536"`
	// MaxArgs caps the command name plus its arguments.
	MaxArgs int `json:"max_args" validate:"gte=1,lte=4096"`
	// YieldMillis is the pause after each command that lets quick background
	// children report before the next prompt.
	YieldMillis int `json:"yield_ms" validate:"gte=0,lte=1000"`
	// ExitGraceMillis is how long exit waits for children to drain.
	ExitGraceMillis int `json:"exit_grace_ms" validate:"gte=0,lte=10000"`

	LogFile  string `json:"log_file"`
	LogLevel string `json:"log_level" validate:"oneof=debug info warn error"`
	// Debug forces the debug level and mirrors warnings to stderr.
	Debug bool   `json:"debug"`
	Color string `json:"color" validate:"oneof=auto always never"`
}

func Default() *Configuration {
	return &Configuration{
		MaxLineLength:   2048,
		MaxArgs:         512,
		YieldMillis:     5,
		ExitGraceMillis: 5,
		LogLevel:        "info",
		Color:           "auto",
	}
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c *Configuration) Yield() time.Duration {
	return time.Duration(c.YieldMillis) * time.Millisecond
}

func (c *Configuration) ExitGrace() time.Duration {
	return time.Duration(c.ExitGraceMillis) * time.Millisecond
}

// DefaultPath returns $XDG_CONFIG_HOME/smallsh/config.yaml, falling back to
// ~/.config when the variable is unset.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "smallsh", ConfigurationName)
}
