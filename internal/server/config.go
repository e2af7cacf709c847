package server

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration.
type Config struct {
	Server Settings `hcl:"server,block"`
}

// Settings contains server-level configuration. Values from the HCL
// file override the defaults; environment variables override both.
type Settings struct {
	Address string `hcl:"address,optional" env:"SHELLTRACK_ADDRESS"`
	Port    int    `hcl:"port,optional" env:"SHELLTRACK_PORT"`

	LogLevel string `hcl:"log_level,optional" env:"SHELLTRACK_LOG_LEVEL"`

	// DatabasePath selects the sqlite session store; empty keeps
	// sessions in memory only.
	DatabasePath string `hcl:"database_path,optional" env:"SHELLTRACK_DATABASE_PATH"`

	// SessionIdleMinutes > 0 enables the idle-session sweep.
	SessionIdleMinutes int `hcl:"session_idle_minutes,optional" env:"SHELLTRACK_SESSION_IDLE_MINUTES"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: Settings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
	}
}

// LoadConfig reads an HCL config file over the defaults. An empty
// path keeps the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse config %s: %s", path, diags.Error())
	}

	parsed := &Config{}
	if diags := gohcl.DecodeBody(file.Body, nil, parsed); diags.HasErrors() {
		return nil, fmt.Errorf("decode config %s: %s", path, diags.Error())
	}

	mergeSettings(&config.Server, parsed.Server)
	return config, nil
}

// ApplyEnv overlays SHELLTRACK_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(&c.Server); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ListenAddr returns the host:port to bind.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

func mergeSettings(dst *Settings, src Settings) {
	if src.Address != "" {
		dst.Address = src.Address
	}
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.DatabasePath != "" {
		dst.DatabasePath = src.DatabasePath
	}
	if src.SessionIdleMinutes != 0 {
		dst.SessionIdleMinutes = src.SessionIdleMinutes
	}
}
