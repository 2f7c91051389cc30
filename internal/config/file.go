package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in each search directory.
const FileName = "derky.yaml"

// Load builds the effective configuration: defaults, then the first config
// file found by SearchPaths, then command-line flags.
func Load() (*Config, error) {
	cfg := Default()
	if path, ok := locate(); ok {
		if err := cfg.ReadFile(path); err != nil {
			return nil, err
		}
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// SearchPaths lists the candidate config files in lookup order. An explicit
// -config path is the only candidate when given.
func SearchPaths() []string {
	if *flagConfig != "" {
		return []string{*flagConfig}
	}
	return []string{FileName, filepath.Join(Dir(), FileName)}
}

// locate returns the first existing candidate. An explicit path is returned
// even when missing so the read error reaches the caller.
func locate() (string, bool) {
	if *flagConfig != "" {
		return *flagConfig, true
	}
	for _, p := range SearchPaths() {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Dir returns the per-user config directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Derky")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Derky")
		}
		return filepath.Join(home, "AppData", "Roaming", "Derky")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "derky")
	}
	return filepath.Join(home, ".config", "derky")
}

// ReadFile merges the YAML document at path over c. Keys missing from the
// document keep their current values; unknown keys are an error.
func (c *Config) ReadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// WriteFile stores c as YAML at path, creating missing directories.
func (c *Config) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
