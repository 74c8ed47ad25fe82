package config

import (
	"errors"
	"fmt"
)

var (
	// ErrNilConfig is returned when a nil *Config is validated or built.
	ErrNilConfig = errors.New("config is nil")

	// ErrFileNotFound is returned by Load for a missing file.
	ErrFileNotFound = errors.New("config file not found")
)

// ConfigError reports an invalid field value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %s", e.Field, e.Message)
}
