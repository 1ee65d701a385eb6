package printer

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds the current device list. Every scan replaces the list
// wholesale; devices from earlier scans never linger.
type Registry struct {
	mu      sync.RWMutex
	devices []Device
	ids     map[string]string // address -> stable id across rescans
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ids: make(map[string]string),
	}
}

// Replace swaps in the results of a scan. Candidates whose names match a
// printer keyword are kept; if none match, the full list is kept so the user
// can still pick a device the filter missed. Nameless devices get a fallback
// name derived from their address.
func (r *Registry) Replace(found []DeviceInfo) []Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]DeviceInfo, 0, len(found))
	for _, d := range found {
		if looksLikePrinter(d.Name) {
			matched = append(matched, d)
		}
	}
	if len(matched) == 0 {
		matched = found
	}

	devices := make([]Device, 0, len(matched))
	for _, d := range matched {
		name := d.Name
		if name == "" {
			name = fallbackDeviceName(d.Address)
		}
		devices = append(devices, Device{
			ID:      r.idFor(d),
			Name:    name,
			Address: d.Address,
		})
	}

	r.devices = devices
	return r.snapshot()
}

// idFor returns a stable id for the device, preferring the transport's own
// id and otherwise minting one per address.
func (r *Registry) idFor(d DeviceInfo) string {
	if d.ID != "" {
		return d.ID
	}
	if id, ok := r.ids[d.Address]; ok {
		return id
	}
	id := uuid.New().String()
	r.ids[d.Address] = id
	return id
}

// Devices returns a copy of the current list.
func (r *Registry) Devices() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot()
}

// Find looks a device up by id.
func (r *Registry) Find(id string) (Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.devices {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

// FindByAddress looks a device up by transport address.
func (r *Registry) FindByAddress(address string) (Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if address == "" {
		return Device{}, false
	}
	for _, d := range r.devices {
		if d.Address == address {
			return d, true
		}
	}
	return Device{}, false
}

// MarkConnected flags the device with the given id as connected and clears
// the flag everywhere else. An empty id clears all flags.
func (r *Registry) MarkConnected(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.devices {
		r.devices[i].Connected = r.devices[i].ID == id && id != ""
	}
}

func (r *Registry) snapshot() []Device {
	out := make([]Device, len(r.devices))
	copy(out, r.devices)
	return out
}
