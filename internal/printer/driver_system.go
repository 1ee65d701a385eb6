package printer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// SystemPrintAddress is the pseudo-address of the system print device.
const SystemPrintAddress = "system"

// SystemPrintDriver spools receipt markup to files and hands them to the
// platform print command. It exposes a single pseudo-device and never needs
// a connection, so prints work even before any device was selected.
type SystemPrintDriver struct {
	spoolDir     string
	printCommand string
}

// NewSystemPrintDriver creates a driver spooling into spoolDir. printCommand
// is the executable each spooled file is handed to, typically "lp"; when it
// is empty or not installed, files are only spooled.
func NewSystemPrintDriver(spoolDir, printCommand string) *SystemPrintDriver {
	return &SystemPrintDriver{
		spoolDir:     spoolDir,
		printCommand: printCommand,
	}
}

func (d *SystemPrintDriver) Discover(ctx context.Context) ([]DeviceInfo, error) {
	return []DeviceInfo{
		{
			ID:      SystemPrintAddress,
			Name:    "طابعة النظام الافتراضية",
			Address: SystemPrintAddress,
		},
	}, nil
}

func (d *SystemPrintDriver) Connect(ctx context.Context, address string) error {
	return nil
}

func (d *SystemPrintDriver) Disconnect(ctx context.Context, address string) error {
	return nil
}

func (d *SystemPrintDriver) Write(ctx context.Context, address string, data []byte) (int, error) {
	if err := os.MkdirAll(d.spoolDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create spool directory: %w", err)
	}

	name := fmt.Sprintf("receipt-%d.html", time.Now().UnixNano())
	path := filepath.Join(d.spoolDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to spool receipt: %w", err)
	}

	if d.printCommand != "" {
		if _, err := exec.LookPath(d.printCommand); err == nil {
			cmd := exec.CommandContext(ctx, d.printCommand, path)
			if out, err := cmd.CombinedOutput(); err != nil {
				return 0, fmt.Errorf("print command failed: %v: %s", err, out)
			}
		}
	}

	return len(data), nil
}

func (d *SystemPrintDriver) Encoding() Encoding {
	return EncodingMarkup
}
