package config

import "fmt"

// Mode selects which backend the client talks to.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Config holds client configuration values.
type Config struct {
	Mode         string `mapstructure:"mode" yaml:"mode"`
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	ServerURL    string `mapstructure:"server_url" yaml:"server_url"`
	Token        string `mapstructure:"token" yaml:"token"`
	Username     string `mapstructure:"username" yaml:"username"`
	Password     string `mapstructure:"password" yaml:"password"`
	Room         string `mapstructure:"room" yaml:"room"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Mode:         ModeLocal,
		DatabasePath: "wirechat.db",
		ServerURL:    "http://localhost:8080",
		LogLevel:     "info",
	}
}

// Validate checks values that would otherwise fail deep inside the app.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeLocal, ModeRemote:
	default:
		return fmt.Errorf("unknown mode %q (expected %q or %q)", c.Mode, ModeLocal, ModeRemote)
	}
	if c.Mode == ModeRemote && c.ServerURL == "" {
		return fmt.Errorf("remote mode requires server_url")
	}
	if c.Mode == ModeLocal && c.DatabasePath == "" {
		return fmt.Errorf("local mode requires database_path")
	}
	return nil
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Mode != "" {
		c.Mode = other.Mode
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.ServerURL != "" {
		c.ServerURL = other.ServerURL
	}
	if other.Token != "" {
		c.Token = other.Token
	}
	if other.Username != "" {
		c.Username = other.Username
	}
	if other.Password != "" {
		c.Password = other.Password
	}
	if other.Room != "" {
		c.Room = other.Room
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}
