// Package config loads service configuration from a .env file, an optional
// YAML file and the process environment, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadDotEnv loads .env files into the process environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// LoadYAML decodes the YAML file at path into target. An empty path is a no-op.
func LoadYAML(path string, target any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

// ParseEnv loads configuration from environment variables.
// Fields whose variable is unset keep their current value.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load runs LoadDotEnv, LoadYAML and ParseEnv against target.
func Load(yamlPath string, target any) error {
	if err := LoadDotEnv(); err != nil {
		return err
	}
	if err := LoadYAML(yamlPath, target); err != nil {
		return err
	}
	return ParseEnv(target)
}
