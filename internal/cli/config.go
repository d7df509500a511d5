package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultServer = "http://localhost:8080"

// Config is the client's on-disk state: where the server is and the session
// obtained by `classboard login`.
type Config struct {
	Server       string        `yaml:"server"`
	AccessToken  string        `yaml:"access_token,omitempty"`
	RefreshToken string        `yaml:"refresh_token,omitempty"`
	InstructorID string        `yaml:"instructor_id,omitempty"`
	Email        string        `yaml:"email,omitempty"`
	Debounce     time.Duration `yaml:"debounce,omitempty"`
}

func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "classboard", "config.yaml"), nil
}

// LoadConfig reads path. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{Server: DefaultServer}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.Debounce < 0 {
		return nil, fmt.Errorf("invalid debounce %s", cfg.Debounce)
	}
	return cfg, nil
}

// Save writes the config readable by the owner only; it holds tokens.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c *Config) clearSession() {
	c.AccessToken = ""
	c.RefreshToken = ""
	c.InstructorID = ""
	c.Email = ""
}
