package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile populates v from a YAML file. Unlike Load the result is not
// cached: deployment files like the trusted-origin list are read exactly
// where the caller decides.
func LoadFile[T any](path string, v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadingFile, err)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadingFile, path, err)
	}
	return nil
}
