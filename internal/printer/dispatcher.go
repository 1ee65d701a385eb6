package printer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/happytime/posprint/internal/receipt"
)

// PrintReceipt renders the order and sends the configured number of copies
// to the printer. It reports plain success or failure; err carries the
// detail for logging and event payloads. Printing is not transactional: a
// failure partway through a batch leaves the already printed copies on
// paper, and the whole batch is retried by printing again.
func (s *Service) PrintReceipt(ctx context.Context, order *receipt.Order, info receipt.RestaurantInfo) (bool, error) {
	s.mu.Lock()
	if s.printing {
		s.mu.Unlock()
		return false, ErrPrintInProgress
	}
	s.printing = true
	device := s.connected
	state := s.state
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.printing = false
		s.mu.Unlock()
	}()

	address := SystemPrintAddress
	if s.driver.Encoding() == EncodingCommandStream {
		// Thermal transports need an open session; system printing does not.
		if state != StateConnected || device == nil {
			s.emit(Event{Type: EventPrintFinished, Success: false, Message: ErrNotConnected.Error()})
			return false, ErrNotConnected
		}
		address = device.Address
	} else if device != nil {
		address = device.Address
	}

	st := s.store.Get()
	opt := st.RenderOptions()
	if info.LogoPath == "" {
		info.LogoPath = st.LogoPath
	}

	for i := 0; i < st.Copies; i++ {
		if i > 0 {
			if err := sleepCtx(ctx, s.timeouts.CopyDelay); err != nil {
				return s.printFailed(order.ID, i, err)
			}
		}

		var payload []byte
		if s.driver.Encoding() == EncodingMarkup {
			payload = receipt.RenderMarkup(order, info, opt)
		} else {
			payload = receipt.RenderCommandStream(order, info, opt)
		}

		if err := s.writePayload(ctx, address, payload); err != nil {
			return s.printFailed(order.ID, i, err)
		}
	}

	log.Printf("Printed order %s (%d copies)", order.ID, st.Copies)
	s.emit(Event{Type: EventPrintFinished, Device: device, Success: true})
	return true, nil
}

// TestPrint sends the fixed test receipt through the normal print path.
func (s *Service) TestPrint(ctx context.Context) (bool, error) {
	return s.PrintReceipt(ctx, receipt.TestOrder(), receipt.TestRestaurantInfo())
}

func (s *Service) printFailed(orderID string, index int, err error) (bool, error) {
	wrapped := err
	if !isTaxonomyError(err) {
		wrapped = fmt.Errorf("%w: %v", ErrTransmissionFailed, err)
	}
	log.Printf("Print of order %s failed on copy %d: %v", orderID, index+1, wrapped)
	s.emit(Event{Type: EventPrintFinished, Success: false, Message: wrapped.Error()})
	return false, wrapped
}

// writePayload sends one rendered copy, bounded by the write timeout. The
// driver call runs in its own goroutine because serial ports have no
// deadline support.
func (s *Service) writePayload(ctx context.Context, address string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Write)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		_, err := s.driver.Write(ctx, address, payload)
		errc <- err
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrTransmissionFailed, ctx.Err())
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isTaxonomyError(err error) bool {
	for _, sentinel := range []error{
		ErrPermissionDenied, ErrTransportUnavailable, ErrConnectionFailed,
		ErrNotConnected, ErrTransmissionFailed, ErrPrintInProgress,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
