package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// ErrPersistenceFailed wraps any failure to write the settings file.
var ErrPersistenceFailed = errors.New("settings persistence failed")

// Store keeps the settings in memory and mirrors every change to a JSON
// file. The file is the source of truth: a change is written to disk before
// it becomes visible to readers, and a failed write leaves the previous
// settings in place.
type Store struct {
	path    string
	mu      sync.RWMutex
	current Settings
}

// NewStore creates a store backed by the given file path. Call Load before
// first use.
func NewStore(path string) *Store {
	return &Store{
		path:    path,
		current: Defaults(),
	}
}

// Load reads the settings file. A missing file leaves the defaults in place.
// Fields absent from the file keep their default values.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	loaded := Defaults()
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse settings file: %w", err)
	}
	loaded.Clamp()
	s.current = loaded
	return nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies a partial change. Persistence failures are logged and the
// in-memory settings stay unchanged so memory and disk never diverge.
func (s *Store) Update(u Update) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.apply(u)
	if err := s.save(next); err != nil {
		log.Printf("Failed to save settings: %v", err)
		return s.current
	}
	s.current = next
	return next
}

// SetSelectedPrinter records the connected device, or clears it with nil.
func (s *Store) SetSelectedPrinter(p *SelectedPrinter) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	next.SelectedPrinter = p
	if err := s.save(next); err != nil {
		log.Printf("Failed to save settings: %v", err)
		return s.current
	}
	s.current = next
	return next
}

// save writes the settings atomically via a temp file rename.
func (s *Store) save(v Settings) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	return nil
}
