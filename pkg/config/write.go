package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	perrors "github.com/matzehuels/passrank/pkg/errors"
)

// Encode writes c to w as TOML, or as YAML when yamlFormat is set.
func Encode(w io.Writer, c *Config, yamlFormat bool) error {
	if yamlFormat {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	return nil
}

// Write saves c to path in the format implied by its extension. An existing
// file is only replaced when overwrite is set.
func Write(path string, c *Config, overwrite bool) error {
	if err := perrors.ValidatePath(path); err != nil {
		return err
	}
	if err := perrors.ValidateExtension(path, ".toml", ".yaml", ".yml"); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, c, isYAML(path)); err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, os.ErrExist) {
		return perrors.Wrap(perrors.ErrCodeInvalidPath, err, "%s already exists (use --force to replace it)", path)
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
