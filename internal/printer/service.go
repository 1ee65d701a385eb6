package printer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/happytime/posprint/internal/settings"
)

// State is the connection lifecycle phase.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Event types emitted by the service.
const (
	EventScanFinished        = "scan_finished"
	EventPrinterConnected    = "printer_connected"
	EventPrinterDisconnected = "printer_disconnected"
	EventPrintFinished       = "print_finished"
)

// Event notifies subscribers of a service state change.
type Event struct {
	Type    string  `json:"type"`
	Device  *Device `json:"device,omitempty"`
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
}

// Timeouts bounds the service's blocking operations. Zero fields fall back
// to the defaults.
type Timeouts struct {
	Scan      time.Duration
	Connect   time.Duration
	Write     time.Duration
	CopyDelay time.Duration
}

func (t *Timeouts) applyDefaults() {
	if t.Scan <= 0 {
		t.Scan = 10 * time.Second
	}
	if t.Connect <= 0 {
		t.Connect = 15 * time.Second
	}
	if t.Write <= 0 {
		t.Write = 5 * time.Second
	}
	if t.CopyDelay < 0 {
		t.CopyDelay = 0
	}
}

// Service owns the device registry, the single active connection and print
// dispatch. All state transitions go through it.
type Service struct {
	driver   Driver
	registry *Registry
	store    *settings.Store
	timeouts Timeouts

	mu        sync.Mutex
	state     State
	connected *Device
	scanning  bool
	printing  bool

	listenerMu sync.RWMutex
	listeners  []func(Event)
}

// NewService wires a driver to the settings store.
func NewService(driver Driver, store *settings.Store, timeouts Timeouts) *Service {
	timeouts.applyDefaults()
	return &Service{
		driver:   driver,
		registry: NewRegistry(),
		store:    store,
		timeouts: timeouts,
	}
}

// Subscribe registers a listener for service events. Listeners must not
// block.
func (s *Service) Subscribe(fn func(Event)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) emit(ev Event) {
	s.listenerMu.RLock()
	defer s.listenerMu.RUnlock()
	for _, fn := range s.listeners {
		fn(ev)
	}
}

// State returns the current connection state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsConnected reports whether a device is connected.
func (s *Service) IsConnected() bool {
	return s.State() == StateConnected
}

// ConnectedDevice returns the connected device, or nil.
func (s *Service) ConnectedDevice() *Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected == nil {
		return nil
	}
	d := *s.connected
	return &d
}

// Devices returns the current device list.
func (s *Service) Devices() []Device {
	return s.registry.Devices()
}

// Settings returns the current settings.
func (s *Service) Settings() settings.Settings {
	return s.store.Get()
}

// UpdateSettings applies a partial settings change.
func (s *Service) UpdateSettings(u settings.Update) settings.Settings {
	return s.store.Update(u)
}

// Scan discovers devices and replaces the registry. A scan already in
// flight is not restarted; the current list is returned as is.
func (s *Service) Scan(ctx context.Context) ([]Device, error) {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return s.registry.Devices(), nil
	}
	s.scanning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.scanning = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Scan)
	defer cancel()

	found, err := s.driver.Discover(ctx)
	if err != nil {
		log.Printf("Printer scan failed: %v", err)
		s.emit(Event{Type: EventScanFinished, Success: false, Message: err.Error()})
		return nil, err
	}

	devices := s.registry.Replace(found)

	// Re-flag the connected device if it survived the rescan.
	s.mu.Lock()
	if s.connected != nil {
		s.registry.MarkConnected(s.connected.ID)
		devices = s.registry.Devices()
	}
	s.mu.Unlock()

	log.Printf("Printer scan finished: %d device(s)", len(devices))
	s.emit(Event{Type: EventScanFinished, Success: true})
	return devices, nil
}

// Connect establishes a connection to the device with the given id. When
// another device is already connected it is swapped out only after the new
// connection succeeds, so a failed attempt never drops a working printer.
func (s *Service) Connect(ctx context.Context, deviceID string) error {
	device, ok := s.registry.Find(deviceID)
	if !ok {
		return fmt.Errorf("%w: unknown device %q", ErrConnectionFailed, deviceID)
	}

	s.mu.Lock()
	if s.connected != nil && s.connected.ID == device.ID {
		s.mu.Unlock()
		return nil
	}
	previous := s.connected
	s.state = StateConnecting
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Connect)
	defer cancel()

	if err := s.driver.Connect(ctx, device.Address); err != nil {
		s.mu.Lock()
		if previous != nil {
			s.state = StateConnected
		} else {
			s.state = StateDisconnected
		}
		s.mu.Unlock()
		log.Printf("Failed to connect to %s: %v", device.Name, err)
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	if previous != nil {
		if err := s.driver.Disconnect(ctx, previous.Address); err != nil {
			log.Printf("Failed to release %s: %v", previous.Name, err)
		}
	}

	device.Connected = true
	s.mu.Lock()
	s.connected = &device
	s.state = StateConnected
	s.mu.Unlock()

	s.registry.MarkConnected(device.ID)
	s.store.SetSelectedPrinter(&settings.SelectedPrinter{
		ID:      device.ID,
		Name:    device.Name,
		Address: device.Address,
	})

	log.Printf("Connected to printer %s (%s)", device.Name, device.Address)
	s.emit(Event{Type: EventPrinterConnected, Device: &device, Success: true})
	return nil
}

// Disconnect tears down the active connection. Calling it while already
// disconnected is a no-op.
func (s *Service) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	device := s.connected
	s.connected = nil
	s.state = StateDisconnected
	s.mu.Unlock()

	if device == nil {
		return nil
	}

	s.registry.MarkConnected("")
	s.store.SetSelectedPrinter(nil)

	if err := s.driver.Disconnect(ctx, device.Address); err != nil {
		// State is already cleared; a teardown error only gets logged.
		log.Printf("Failed to disconnect from %s: %v", device.Name, err)
	}

	log.Printf("Disconnected from printer %s", device.Name)
	s.emit(Event{Type: EventPrinterDisconnected, Device: device, Success: true})
	return nil
}

// RestoreConnection reconnects to the persisted device when auto connect is
// enabled. Meant to run once at startup, after an initial scan.
func (s *Service) RestoreConnection(ctx context.Context) {
	st := s.store.Get()
	if !st.AutoConnect || st.SelectedPrinter == nil {
		return
	}
	if _, err := s.Scan(ctx); err != nil {
		return
	}
	// Ids minted for devices without a transport id do not survive a
	// restart; the address does, so prefer it when the device rescanned.
	target := st.SelectedPrinter.ID
	if d, ok := s.registry.FindByAddress(st.SelectedPrinter.Address); ok {
		target = d.ID
	}
	if err := s.Connect(ctx, target); err != nil {
		log.Printf("Auto connect to %s failed: %v", st.SelectedPrinter.Name, err)
	}
}
