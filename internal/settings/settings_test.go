package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func testStorePath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "settings.json")
}

func TestDefaults(t *testing.T) {
	s := Defaults()

	if s.PaperWidth != 58 {
		t.Errorf("Default paper width = %d, want 58", s.PaperWidth)
	}
	if s.FontSize != 12 {
		t.Errorf("Default font size = %d, want 12", s.FontSize)
	}
	if !s.PrintLogo || !s.PrintCustomerInfo || !s.PrintFooter {
		t.Error("Logo, customer info and footer should default to enabled")
	}
	if s.PrintQRCode {
		t.Error("QR printing should default to disabled")
	}
	if s.Copies != 1 {
		t.Errorf("Default copies = %d, want 1", s.Copies)
	}
	if s.AutoConnect {
		t.Error("Auto connect should default to disabled")
	}
}

func TestClampCopies(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 3: 3, 5: 5, 9: 5}
	for in, want := range cases {
		s := Defaults()
		s.Copies = in
		s.Clamp()
		if s.Copies != want {
			t.Errorf("Clamp copies %d = %d, want %d", in, s.Copies, want)
		}
	}
}

func TestClampPaperWidth(t *testing.T) {
	s := Defaults()
	s.PaperWidth = 72
	s.Clamp()
	if s.PaperWidth != 58 {
		t.Errorf("Unsupported paper width should clamp to 58, got %d", s.PaperWidth)
	}

	s.PaperWidth = 80
	s.Clamp()
	if s.PaperWidth != 80 {
		t.Error("80mm paper width should be preserved")
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(testStorePath(t))

	if err := store.Load(); err != nil {
		t.Fatalf("Load with missing file should succeed, got %v", err)
	}
	if store.Get() != Defaults() {
		t.Error("Missing file should leave defaults in place")
	}
}

func TestStoreLoadMergesDefaults(t *testing.T) {
	path := testStorePath(t)
	if err := os.WriteFile(path, []byte(`{"paperWidth": 80}`), 0644); err != nil {
		t.Fatalf("Failed to write settings file: %v", err)
	}

	store := NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got := store.Get()
	if got.PaperWidth != 80 {
		t.Errorf("Paper width = %d, want 80", got.PaperWidth)
	}
	if got.FontSize != 12 || got.Copies != 1 {
		t.Error("Fields missing from the file should keep their defaults")
	}
}

func TestStoreUpdatePersists(t *testing.T) {
	path := testStorePath(t)
	store := NewStore(path)

	copies := 3
	footer := false
	got := store.Update(Update{Copies: &copies, PrintFooter: &footer})

	if got.Copies != 3 || got.PrintFooter {
		t.Error("Update result should reflect the change")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Settings file should exist after update: %v", err)
	}
	var onDisk Settings
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("Failed to parse persisted settings: %v", err)
	}
	if onDisk.Copies != 3 || onDisk.PrintFooter {
		t.Error("Persisted settings should match the update")
	}
	if onDisk.PaperWidth != 58 {
		t.Error("Unrelated fields should survive the update")
	}
}

func TestStoreUpdateClamps(t *testing.T) {
	store := NewStore(testStorePath(t))

	copies := 99
	if got := store.Update(Update{Copies: &copies}); got.Copies != MaxCopies {
		t.Errorf("Copies = %d, want %d", got.Copies, MaxCopies)
	}

	copies = -1
	if got := store.Update(Update{Copies: &copies}); got.Copies != MinCopies {
		t.Errorf("Copies = %d, want %d", got.Copies, MinCopies)
	}
}

func TestStoreUpdateKeepsMemoryOnWriteFailure(t *testing.T) {
	// A directory path makes the rename fail.
	dir := t.TempDir()
	store := NewStore(dir)

	copies := 4
	got := store.Update(Update{Copies: &copies})

	if got.Copies != Defaults().Copies {
		t.Error("Failed persistence should leave in-memory settings unchanged")
	}
}

func TestStoreSelectedPrinterRoundTrip(t *testing.T) {
	path := testStorePath(t)
	store := NewStore(path)

	store.SetSelectedPrinter(&SelectedPrinter{ID: "dev-1", Name: "TP-58", Address: "00:11:22:33:44:55"})

	reloaded := NewStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	sp := reloaded.Get().SelectedPrinter
	if sp == nil || sp.Address != "00:11:22:33:44:55" {
		t.Error("Selected printer should survive a reload")
	}

	store.SetSelectedPrinter(nil)
	reloaded = NewStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reloaded.Get().SelectedPrinter != nil {
		t.Error("Clearing the selected printer should persist")
	}
}
