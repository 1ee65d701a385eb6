package printer

import "testing"

func TestRegistryStableIDs(t *testing.T) {
	r := NewRegistry()

	first := r.Replace([]DeviceInfo{{Name: "TP-58 Printer", Address: "00:11"}})
	second := r.Replace([]DeviceInfo{{Name: "TP-58 Printer", Address: "00:11"}})

	if first[0].ID == "" {
		t.Fatal("Devices without a transport id should get one minted")
	}
	if first[0].ID != second[0].ID {
		t.Error("Minted ids should be stable across rescans of the same address")
	}
}

func TestRegistryMarkConnected(t *testing.T) {
	r := NewRegistry()
	r.Replace([]DeviceInfo{
		{ID: "a", Name: "POS Printer", Address: "01"},
		{ID: "b", Name: "Thermal Printer", Address: "02"},
	})

	r.MarkConnected("a")
	r.MarkConnected("b")

	for _, d := range r.Devices() {
		if d.ID == "b" && !d.Connected {
			t.Error("Device b should be connected")
		}
		if d.ID == "a" && d.Connected {
			t.Error("Device a should have been cleared")
		}
	}

	r.MarkConnected("")
	for _, d := range r.Devices() {
		if d.Connected {
			t.Error("Empty id should clear every connected flag")
		}
	}
}

func TestRegistryFind(t *testing.T) {
	r := NewRegistry()
	r.Replace([]DeviceInfo{{ID: "a", Name: "POS Printer", Address: "01"}})

	if _, ok := r.Find("a"); !ok {
		t.Error("Find should locate an existing device")
	}
	if _, ok := r.Find("missing"); ok {
		t.Error("Find should miss on unknown ids")
	}
}

func TestLooksLikePrinter(t *testing.T) {
	yes := []string{"TM-T20", "Epson Receipt", "BlueTooth POS", "tp-58", "My THERMAL unit"}
	for _, name := range yes {
		if !looksLikePrinter(name) {
			t.Errorf("%q should match the printer keywords", name)
		}
	}

	no := []string{"JBL Speaker", "Headphones", ""}
	for _, name := range no {
		if looksLikePrinter(name) {
			t.Errorf("%q should not match the printer keywords", name)
		}
	}
}
