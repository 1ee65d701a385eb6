// Package printer manages printer discovery, the single active connection,
// and receipt dispatch. Transports are hidden behind the Driver interface so
// the connection logic never branches on platform.
package printer

import (
	"context"
	"errors"
)

// Failure categories surfaced to callers. Wrapped causes carry the
// transport detail.
var (
	ErrPermissionDenied     = errors.New("permission denied")
	ErrTransportUnavailable = errors.New("transport unavailable")
	ErrConnectionFailed     = errors.New("connection failed")
	ErrNotConnected         = errors.New("no printer connected")
	ErrTransmissionFailed   = errors.New("transmission failed")
	ErrPrintInProgress      = errors.New("print already in progress")
)

// Encoding tells the dispatcher which receipt rendering a driver consumes.
type Encoding int

const (
	// EncodingCommandStream is the ESC/POS byte protocol.
	EncodingCommandStream Encoding = iota
	// EncodingMarkup is HTML handed to a system print spooler.
	EncodingMarkup
)

// DeviceInfo describes a device found during discovery.
type DeviceInfo struct {
	ID      string
	Name    string
	Address string
}

// Driver is a printer transport. Implementations are safe for use from a
// single goroutine at a time; the Service serializes access.
type Driver interface {
	// Discover scans for candidate devices. It returns ErrTransportUnavailable
	// when the transport is off or absent and ErrPermissionDenied when the
	// platform refuses access.
	Discover(ctx context.Context) ([]DeviceInfo, error)

	// Connect opens a session to the device at the given address.
	Connect(ctx context.Context, address string) error

	// Disconnect closes the session for the given address. Disconnecting an
	// address without a session is a no-op.
	Disconnect(ctx context.Context, address string) error

	// Write sends payload bytes over an open session.
	Write(ctx context.Context, address string, data []byte) (int, error)

	// Encoding reports the payload format this transport consumes.
	Encoding() Encoding
}
