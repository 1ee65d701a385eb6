package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Address != ":8321" {
		t.Errorf("Default address = %q", cfg.Server.Address)
	}
	if cfg.Printer.Driver != DriverBluetooth {
		t.Errorf("Default driver = %q", cfg.Printer.Driver)
	}
	if cfg.Printer.CopyDelay != 2*time.Second {
		t.Errorf("Default copy delay = %v", cfg.Printer.CopyDelay)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  address: ":9000"
printer:
  driver: usb
  write_timeout: 3s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":9000" {
		t.Errorf("Address = %q, want :9000", cfg.Server.Address)
	}
	if cfg.Printer.Driver != DriverUSB {
		t.Errorf("Driver = %q, want usb", cfg.Printer.Driver)
	}
	if cfg.Printer.WriteTimeout != 3*time.Second {
		t.Errorf("Write timeout = %v, want 3s", cfg.Printer.WriteTimeout)
	}
	if cfg.Printer.Baud != 9600 {
		t.Error("Fields missing from the file should keep defaults")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POSPRINT_ADDRESS", ":7777")
	t.Setenv("POSPRINT_DRIVER", "system")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":7777" {
		t.Errorf("Address = %q, want :7777", cfg.Server.Address)
	}
	if cfg.Printer.Driver != DriverSystem {
		t.Errorf("Driver = %q, want system", cfg.Printer.Driver)
	}
}

func TestValidateRejectsBadDriver(t *testing.T) {
	cfg := defaults()
	cfg.Printer.Driver = "carrier-pigeon"

	if err := cfg.Validate(); err == nil {
		t.Error("Unknown driver should fail validation")
	}
}

func TestValidateRejectsBadTimeouts(t *testing.T) {
	cfg := defaults()
	cfg.Printer.WriteTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Zero write timeout should fail validation")
	}

	cfg = defaults()
	cfg.Printer.CopyDelay = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("Negative copy delay should fail validation")
	}
}
