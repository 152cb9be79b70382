package hid

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shini4i/fod-inscreen-daemon/internal/vendorsvc"
)

// The mode report layout is an assumed vendor protocol, not a published one:
// report ID, mode, low byte of the value, one reserved byte.
const (
	// ReportID is the HID report ID for display mode control.
	ReportID byte = 0x02

	// ReportSize is the size of the HID feature report in bytes.
	ReportSize = 4
)

// ErrPanelClosed is returned when an operation is attempted on a closed panel.
var ErrPanelClosed = errors.New("panel is closed")

// Panel sends display mode toggles to the panel controller.
// All methods are thread-safe and can be called concurrently.
type Panel struct {
	device Device
	mu     sync.Mutex
	closed bool
}

// Verify Panel implements vendorsvc.DisplayService interface.
var _ vendorsvc.DisplayService = (*Panel)(nil)

// NewPanel creates a new Panel wrapping the given HID device.
func NewPanel(device Device) *Panel {
	return &Panel{device: device}
}

// SetMode writes a mode report: report ID, mode, value.
func (p *Panel) SetMode(mode vendorsvc.Mode, value int32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPanelClosed
	}

	data := make([]byte, ReportSize)
	data[0] = ReportID
	// #nosec G115 -- display modes and their values fit in a byte
	data[1] = byte(mode)
	// #nosec G115 -- mode values are 0 or 1
	data[2] = byte(value)

	if _, err := p.device.SendFeatureReport(data); err != nil {
		return fmt.Errorf("failed to send feature report: %w", err)
	}

	log.Debug().Stringer("mode", mode).Int32("value", value).Str("serial", p.device.Info().Serial).Msg("Sent panel mode")
	return nil
}

// Serial returns the serial number of the panel controller.
// This method does not require locking as device info is immutable.
func (p *Panel) Serial() string {
	return p.device.Info().Serial
}

// Close closes the underlying HID device.
func (p *Panel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil // Already closed
	}

	p.closed = true
	return p.device.Close()
}
