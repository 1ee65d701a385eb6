// Package config loads the daemon configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Driver names accepted by the printer section.
const (
	DriverBluetooth = "bluetooth"
	DriverUSB       = "usb"
	DriverSystem    = "system"
)

// Config is the full daemon configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Printer PrinterConfig `yaml:"printer"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// PrinterConfig selects the transport driver and its tuning.
type PrinterConfig struct {
	Driver         string        `yaml:"driver"`
	Baud           int           `yaml:"baud"`
	ScanTimeout    time.Duration `yaml:"scan_timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	CopyDelay      time.Duration `yaml:"copy_delay"`
	SpoolDir       string        `yaml:"spool_dir"`
	PrintCommand   string        `yaml:"print_command"`
}

// StorageConfig locates the persisted settings.
type StorageConfig struct {
	SettingsPath string `yaml:"settings_path"`
}

func defaults() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".posprint")
	return Config{
		Server: ServerConfig{
			Address: ":8321",
		},
		Printer: PrinterConfig{
			Driver:         DriverBluetooth,
			Baud:           9600,
			ScanTimeout:    10 * time.Second,
			ConnectTimeout: 15 * time.Second,
			WriteTimeout:   5 * time.Second,
			CopyDelay:      2 * time.Second,
			SpoolDir:       filepath.Join(base, "spool"),
			PrintCommand:   "lp",
		},
		Storage: StorageConfig{
			SettingsPath: filepath.Join(base, "settings.json"),
		},
	}
}

// Load reads the config file at path, falling back to defaults when the
// file is missing, then applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("POSPRINT_ADDRESS"); v != "" {
		c.Server.Address = v
	}
	if v := os.Getenv("POSPRINT_DRIVER"); v != "" {
		c.Printer.Driver = v
	}
	if v := os.Getenv("POSPRINT_SETTINGS"); v != "" {
		c.Storage.SettingsPath = v
	}
	if v := os.Getenv("POSPRINT_SPOOL_DIR"); v != "" {
		c.Printer.SpoolDir = v
	}
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("config: server address must not be empty")
	}
	switch c.Printer.Driver {
	case DriverBluetooth, DriverUSB, DriverSystem:
	default:
		return fmt.Errorf("config: unknown printer driver %q", c.Printer.Driver)
	}
	if c.Printer.Baud <= 0 {
		return fmt.Errorf("config: baud must be positive")
	}
	if c.Printer.ScanTimeout <= 0 || c.Printer.ConnectTimeout <= 0 || c.Printer.WriteTimeout <= 0 {
		return fmt.Errorf("config: timeouts must be positive")
	}
	if c.Printer.CopyDelay < 0 {
		return fmt.Errorf("config: copy delay must not be negative")
	}
	if c.Storage.SettingsPath == "" {
		return fmt.Errorf("config: settings path must not be empty")
	}
	return nil
}
