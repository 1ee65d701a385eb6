package printer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/happytime/posprint/internal/settings"
)

func connectedService(t *testing.T, driver *fakeDriver) *Service {
	svc := testService(t, driver)
	if _, err := svc.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if err := svc.Connect(context.Background(), "d1"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return svc
}

func TestPrintReceiptNotConnected(t *testing.T) {
	driver := newFakeDriver(twoPrinters()...)
	svc := testService(t, driver)

	ok, err := svc.TestPrint(context.Background())
	if ok {
		t.Error("Print without a connection should fail")
	}
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Print error = %v, want ErrNotConnected", err)
	}
	if driver.writeCount() != 0 {
		t.Error("No bytes should reach the driver before the connection check")
	}
}

func TestPrintReceiptSingleCopy(t *testing.T) {
	driver := newFakeDriver(twoPrinters()...)
	svc := connectedService(t, driver)

	ok, err := svc.TestPrint(context.Background())
	if !ok || err != nil {
		t.Fatalf("Test print failed: ok=%v err=%v", ok, err)
	}
	if driver.writeCount() != 1 {
		t.Errorf("Got %d writes, want 1", driver.writeCount())
	}
	if !bytes.HasPrefix(driver.writes[0], []byte{0x1B, '@'}) {
		t.Error("Thermal payload should be an ESC/POS command stream")
	}
}

func TestPrintReceiptCopyCount(t *testing.T) {
	driver := newFakeDriver(twoPrinters()...)
	svc := connectedService(t, driver)

	copies := 3
	svc.UpdateSettings(settings.Update{Copies: &copies})

	ok, err := svc.TestPrint(context.Background())
	if !ok || err != nil {
		t.Fatalf("Test print failed: ok=%v err=%v", ok, err)
	}
	if driver.writeCount() != 3 {
		t.Errorf("Got %d writes, want 3", driver.writeCount())
	}
}

func TestPrintReceiptStopsOnFailedCopy(t *testing.T) {
	driver := newFakeDriver(twoPrinters()...)
	svc := connectedService(t, driver)

	copies := 5
	svc.UpdateSettings(settings.Update{Copies: &copies})
	driver.writeErr = errors.New("paper jam")
	driver.failAtWrite = 2

	ok, err := svc.TestPrint(context.Background())
	if ok {
		t.Error("Print should report failure when a copy fails")
	}
	if !errors.Is(err, ErrTransmissionFailed) {
		t.Errorf("Print error = %v, want ErrTransmissionFailed", err)
	}
	if driver.writeCount() != 1 {
		t.Errorf("Copies after the failure should not print, got %d writes", driver.writeCount())
	}
}

func TestPrintReceiptRejectsOverlap(t *testing.T) {
	driver := newFakeDriver(twoPrinters()...)
	driver.writeStarted = make(chan struct{})
	driver.writeRelease = make(chan struct{})
	svc := connectedService(t, driver)

	done := make(chan struct{})
	go func() {
		svc.TestPrint(context.Background())
		close(done)
	}()

	<-driver.writeStarted

	// A second print while one is in flight is rejected, not interleaved.
	ok, err := svc.TestPrint(context.Background())
	if ok {
		t.Error("Overlapping print should be rejected")
	}
	if !errors.Is(err, ErrPrintInProgress) {
		t.Errorf("Print error = %v, want ErrPrintInProgress", err)
	}

	close(driver.writeRelease)
	<-done

	if driver.writeCount() != 1 {
		t.Errorf("Got %d writes, want 1", driver.writeCount())
	}
}

func TestPrintReceiptMarkupWithoutConnection(t *testing.T) {
	driver := newFakeDriver(twoPrinters()...)
	driver.encoding = EncodingMarkup
	svc := testService(t, driver)

	ok, err := svc.TestPrint(context.Background())
	if !ok || err != nil {
		t.Fatalf("Markup print should not require a connection: ok=%v err=%v", ok, err)
	}
	if driver.writeCount() != 1 {
		t.Fatalf("Got %d writes, want 1", driver.writeCount())
	}
	if !bytes.Contains(driver.writes[0], []byte("<!DOCTYPE html>")) {
		t.Error("Markup payload should be an HTML document")
	}
}

func TestPrintReceiptEmitsEvent(t *testing.T) {
	driver := newFakeDriver(twoPrinters()...)
	svc := connectedService(t, driver)

	var last Event
	svc.Subscribe(func(ev Event) {
		if ev.Type == EventPrintFinished {
			last = ev
		}
	})

	svc.TestPrint(context.Background())

	if last.Type != EventPrintFinished || !last.Success {
		t.Errorf("Expected successful print_finished event, got %+v", last)
	}
}
