package printer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/tarm/serial"
)

// BluetoothDriver talks to paired Bluetooth printers over RFCOMM serial
// ports. Discovery shells out to bluetoothctl, which every BlueZ install
// ships; opening the port itself goes through the serial package.
type BluetoothDriver struct {
	baud  int
	mu    sync.Mutex
	ports map[string]*serial.Port // address -> open port
}

// NewBluetoothDriver creates a driver using the given baud rate. Thermal
// printers commonly run at 9600.
func NewBluetoothDriver(baud int) *BluetoothDriver {
	if baud <= 0 {
		baud = 9600
	}
	return &BluetoothDriver{
		baud:  baud,
		ports: make(map[string]*serial.Port),
	}
}

// Discover lists paired devices via bluetoothctl. The adapter must be
// powered on.
func (d *BluetoothDriver) Discover(ctx context.Context) ([]DeviceInfo, error) {
	if err := d.checkAdapter(ctx); err != nil {
		return nil, err
	}

	out, err := exec.CommandContext(ctx, "bluetoothctl", "devices").Output()
	if err != nil {
		return nil, classifyExecError(err)
	}

	var devices []DeviceInfo
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		// Lines look like: Device 00:11:22:33:44:55 TP-58 Printer
		fields := strings.SplitN(scanner.Text(), " ", 3)
		if len(fields) < 2 || fields[0] != "Device" {
			continue
		}
		info := DeviceInfo{Address: fields[1]}
		if len(fields) == 3 {
			info.Name = strings.TrimSpace(fields[2])
		}
		devices = append(devices, info)
	}
	return devices, nil
}

// checkAdapter verifies bluetoothctl exists and the adapter is powered.
func (d *BluetoothDriver) checkAdapter(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, "bluetoothctl", "show").Output()
	if err != nil {
		return classifyExecError(err)
	}
	if !bytes.Contains(out, []byte("Powered: yes")) {
		return fmt.Errorf("%w: bluetooth adapter is powered off", ErrTransportUnavailable)
	}
	return nil
}

// Connect binds the device to an RFCOMM node if needed and opens the serial
// port.
func (d *BluetoothDriver) Connect(ctx context.Context, address string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.ports[address]; ok {
		return nil
	}

	node, err := d.rfcommNode(ctx, address)
	if err != nil {
		return err
	}

	port, err := serial.OpenPort(&serial.Config{Name: node, Baud: d.baud})
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return fmt.Errorf("failed to open %s: %w", node, err)
	}

	d.ports[address] = port
	return nil
}

// rfcommNode finds the /dev/rfcomm node bound to the address, binding a
// free one when none exists. Binding needs CAP_NET_ADMIN.
func (d *BluetoothDriver) rfcommNode(ctx context.Context, address string) (string, error) {
	out, err := exec.CommandContext(ctx, "rfcomm").Output()
	if err != nil {
		return "", classifyExecError(err)
	}

	used := make(map[int]bool)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		// Lines look like: rfcomm0: 00:11:22:33:44:55 channel 1 clean
		line := strings.TrimSpace(scanner.Text())
		var idx int
		var mac string
		if n, _ := fmt.Sscanf(line, "rfcomm%d: %s", &idx, &mac); n == 2 {
			used[idx] = true
			if strings.EqualFold(mac, address) {
				return fmt.Sprintf("/dev/rfcomm%d", idx), nil
			}
		}
	}

	free := 0
	for used[free] {
		free++
	}
	node := fmt.Sprintf("rfcomm%d", free)
	if out, err := exec.CommandContext(ctx, "rfcomm", "bind", node, address).CombinedOutput(); err != nil {
		if bytes.Contains(out, []byte("Operation not permitted")) {
			return "", fmt.Errorf("%w: rfcomm bind requires elevated privileges", ErrPermissionDenied)
		}
		return "", fmt.Errorf("rfcomm bind failed: %v: %s", err, out)
	}
	return "/dev/" + node, nil
}

func (d *BluetoothDriver) Disconnect(ctx context.Context, address string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	port, ok := d.ports[address]
	if !ok {
		return nil
	}
	delete(d.ports, address)
	return port.Close()
}

func (d *BluetoothDriver) Write(ctx context.Context, address string, data []byte) (int, error) {
	d.mu.Lock()
	port, ok := d.ports[address]
	d.mu.Unlock()

	if !ok {
		return 0, ErrNotConnected
	}

	n, err := port.Write(data)
	if err != nil {
		return n, fmt.Errorf("serial write failed: %w", err)
	}
	return n, nil
}

func (d *BluetoothDriver) Encoding() Encoding {
	return EncodingCommandStream
}

// classifyExecError maps tool invocation failures onto the error taxonomy.
func classifyExecError(err error) error {
	if os.IsPermission(err) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && bytes.Contains(exitErr.Stderr, []byte("not authorized")) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
}
