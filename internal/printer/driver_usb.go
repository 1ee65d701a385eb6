package printer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/gousb"
)

// USBDriver drives printer-class USB devices through libusb.
type USBDriver struct {
	usb   *gousb.Context
	mu    sync.Mutex
	conns map[string]*usbConn
}

type usbConn struct {
	dev  *gousb.Device
	intf *gousb.Interface
	done func()
	out  *gousb.OutEndpoint
}

// NewUSBDriver initializes a libusb context. Close releases it.
func NewUSBDriver() *USBDriver {
	return &USBDriver{
		usb:   gousb.NewContext(),
		conns: make(map[string]*usbConn),
	}
}

// Close disconnects everything and releases the libusb context.
func (d *USBDriver) Close() error {
	d.mu.Lock()
	for addr, conn := range d.conns {
		conn.close()
		delete(d.conns, addr)
	}
	d.mu.Unlock()
	return d.usb.Close()
}

// Discover enumerates USB devices exposing a printer-class interface.
func (d *USBDriver) Discover(ctx context.Context) ([]DeviceInfo, error) {
	devs, err := d.usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return hasPrinterInterface(desc)
	})
	if err != nil {
		if errors.Is(err, gousb.ErrorAccess) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}

	var infos []DeviceInfo
	for _, dev := range devs {
		addr := fmt.Sprintf("%s:%s", dev.Desc.Vendor, dev.Desc.Product)
		manufacturer, _ := dev.Manufacturer()
		product, _ := dev.Product()
		infos = append(infos, DeviceInfo{
			ID:      "usb-" + addr,
			Name:    strings.TrimSpace(manufacturer + " " + product),
			Address: addr,
		})
		dev.Close()
	}
	return infos, nil
}

// hasPrinterInterface reports whether any interface is USB class 7.
func hasPrinterInterface(desc *gousb.DeviceDesc) bool {
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, setting := range intf.AltSettings {
				if setting.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}

// Connect opens the device, claims its default interface and resolves the
// bulk OUT endpoint.
func (d *USBDriver) Connect(ctx context.Context, address string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.conns[address]; ok {
		return nil
	}

	vid, pid, err := parseUSBAddress(address)
	if err != nil {
		return err
	}

	dev, err := d.usb.OpenDeviceWithVIDPID(vid, pid)
	if err != nil {
		if errors.Is(err, gousb.ErrorAccess) {
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return fmt.Errorf("failed to open device %s: %w", address, err)
	}
	if dev == nil {
		return fmt.Errorf("device %s not found", address)
	}

	// Detach any kernel driver holding the interface.
	dev.SetAutoDetach(true)

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		return fmt.Errorf("failed to claim interface on %s: %w", address, err)
	}

	out, err := firstOutEndpoint(intf)
	if err != nil {
		done()
		dev.Close()
		return err
	}

	d.conns[address] = &usbConn{dev: dev, intf: intf, done: done, out: out}
	return nil
}

func firstOutEndpoint(intf *gousb.Interface) (*gousb.OutEndpoint, error) {
	for _, ep := range intf.Setting.Endpoints {
		if ep.Direction == gousb.EndpointDirectionOut {
			return intf.OutEndpoint(ep.Number)
		}
	}
	return nil, errors.New("no OUT endpoint on printer interface")
}

func (d *USBDriver) Disconnect(ctx context.Context, address string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	conn, ok := d.conns[address]
	if !ok {
		return nil
	}
	delete(d.conns, address)
	conn.close()
	return nil
}

func (d *USBDriver) Write(ctx context.Context, address string, data []byte) (int, error) {
	d.mu.Lock()
	conn, ok := d.conns[address]
	d.mu.Unlock()

	if !ok {
		return 0, ErrNotConnected
	}

	n, err := conn.out.WriteContext(ctx, data)
	if err != nil {
		return n, fmt.Errorf("usb write failed: %w", err)
	}
	return n, nil
}

func (d *USBDriver) Encoding() Encoding {
	return EncodingCommandStream
}

func (c *usbConn) close() {
	c.done()
	c.dev.Close()
}

// parseUSBAddress splits a "vid:pid" address into its halves.
func parseUSBAddress(address string) (gousb.ID, gousb.ID, error) {
	parts := strings.Split(address, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid usb address %q", address)
	}
	var vid, pid uint16
	if _, err := fmt.Sscanf(parts[0], "%04x", &vid); err != nil {
		return 0, 0, fmt.Errorf("invalid usb address %q", address)
	}
	if _, err := fmt.Sscanf(parts[1], "%04x", &pid); err != nil {
		return 0, 0, fmt.Errorf("invalid usb address %q", address)
	}
	return gousb.ID(vid), gousb.ID(pid), nil
}
