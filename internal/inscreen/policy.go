// SPDX-License-Identifier: GPL-3.0-only

// Package inscreen decides when the in-display fingerprint sensor dims the panel and which
// sensor events reach the authentication client.
package inscreen

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shini4i/fod-inscreen-daemon/internal/profile"
	"github.com/shini4i/fod-inscreen-daemon/internal/vendorsvc"
)

// Sensor event codes reported by the fingerprint HAL.
const (
	// AcquiredVendor is the acquired-info code carrying a vendor finger contact code.
	AcquiredVendor int32 = 6

	// ErrorCanceled is reported when the current operation was canceled.
	ErrorCanceled int32 = 5

	// ErrorVendor is reported for vendor specific errors.
	ErrorVendor int32 = 8
)

const (
	vendorFingerDown int32 = 0
	vendorFingerUp   int32 = 1

	// vendorErrorSuppressed is swallowed so it never reaches the user.
	vendorErrorSuppressed int32 = 6
)

// State is the enrollment state of the sensor.
type State int

const (
	// Idle means no enrollment session is active.
	Idle State = iota
	// Enrolling means an enrollment session is in progress.
	Enrolling
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Enrolling:
		return "enrolling"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Policy is the sensor event state machine. Its behavior follows the profile coupling:
// with DimWithOverlay dimming and event forwarding follow the overlay visibility, with
// DimWithEnroll dimming follows presses during enrollment and events are forwarded ungated.
//
// Transitions are serialized by an internal mutex, and hardware calls are issued while it is
// held so they reach the vendor services in event order. Callback delivery happens after
// the mutex is released, so a sink may call back into the policy. The overlay gate is
// evaluated when the event arrives: a HideOverlay racing with HandleAcquired can return
// before a finger event that already passed the gate is delivered.
type Policy struct {
	coupling    profile.Coupling
	fingerprint vendorsvc.FingerprintService
	display     vendorsvc.DisplayService
	callbacks   *Registry

	mu             sync.Mutex
	state          State
	overlayVisible bool
}

// NewPolicy creates a policy in the Idle state with the overlay hidden.
func NewPolicy(coupling profile.Coupling, fingerprint vendorsvc.FingerprintService, display vendorsvc.DisplayService, callbacks *Registry) *Policy {
	return &Policy{
		coupling:    coupling,
		fingerprint: fingerprint,
		display:     display,
		callbacks:   callbacks,
	}
}

// State returns the current enrollment state.
func (p *Policy) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// OverlayVisible reports whether the fingerprint icon is currently shown.
// It is always false for the DimWithEnroll coupling.
func (p *Policy) OverlayVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overlayVisible
}

// StartEnroll enters the Enrolling state and resumes the vendor enrollment session.
func (p *Policy) StartEnroll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.transition(Enrolling)
	p.updateStatus(vendorsvc.StatusDisableLongPress)
	p.updateStatus(vendorsvc.StatusResumeEnroll)
}

// FinishEnroll returns to Idle and ends the vendor enrollment session.
// The finish status is sent regardless of the current state.
func (p *Policy) FinishEnroll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.transition(Idle)
	p.updateStatus(vendorsvc.StatusFinishEnroll)
}

// Press handles a finger press on the overlay.
func (p *Policy) Press() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.coupling {
	case profile.DimWithOverlay:
		if !p.overlayVisible {
			log.Debug().Msg("Ignoring press while overlay is hidden")
			return
		}
		p.setMode(vendorsvc.ModeNotifyPress, vendorsvc.On)
	case profile.DimWithEnroll:
		p.setMode(vendorsvc.ModeNotifyPress, vendorsvc.On)
		if p.state == Enrolling {
			p.setMode(vendorsvc.ModeSetDim, vendorsvc.On)
		}
	}
}

// Release handles the finger leaving the overlay.
func (p *Policy) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.setMode(vendorsvc.ModeNotifyPress, vendorsvc.Off)
	if p.coupling == profile.DimWithEnroll {
		p.setMode(vendorsvc.ModeSetDim, vendorsvc.Off)
	}
}

// ShowOverlay handles the fingerprint icon being shown.
func (p *Policy) ShowOverlay() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.coupling {
	case profile.DimWithOverlay:
		p.overlayVisible = true
		p.setMode(vendorsvc.ModeSetDim, vendorsvc.On)
	case profile.DimWithEnroll:
		p.setMode(vendorsvc.ModeAOD, vendorsvc.Off)
		p.setMode(vendorsvc.ModeSetDim, vendorsvc.Off)
		p.setMode(vendorsvc.ModeNotifyPress, vendorsvc.Off)
	}
}

// HideOverlay handles the fingerprint icon being hidden.
func (p *Policy) HideOverlay() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.coupling == profile.DimWithOverlay {
		p.overlayVisible = false
	}
	p.setMode(vendorsvc.ModeSetDim, vendorsvc.Off)
	p.setMode(vendorsvc.ModeNotifyPress, vendorsvc.Off)
}

// HandleAcquired forwards vendor finger contact codes to the registered sink.
// It returns true when the event was delivered to a sink, even if delivery failed in transport.
// Visibility is checked once on entry, and delivery runs without holding the policy lock.
func (p *Policy) HandleAcquired(info, vendorCode int32) bool {
	if info != AcquiredVendor {
		return false
	}

	p.mu.Lock()
	gated := p.coupling == profile.DimWithOverlay && !p.overlayVisible
	p.mu.Unlock()

	if gated {
		log.Debug().Int32("vendorCode", vendorCode).Msg("Dropping finger event while overlay is hidden")
		return false
	}

	switch vendorCode {
	case vendorFingerDown:
		return p.callbacks.NotifyDown()
	case vendorFingerUp:
		return p.callbacks.NotifyUp()
	default:
		return false
	}
}

// HandleError reports whether a sensor error was consumed here.
// A cancel during enrollment resets the state but still propagates.
func (p *Policy) HandleError(code, vendorCode int32) bool {
	switch {
	case code == ErrorVendor && vendorCode == vendorErrorSuppressed:
		return true
	case code == ErrorCanceled && vendorCode == 0:
		p.mu.Lock()
		if p.state == Enrolling {
			p.transition(Idle)
		}
		p.mu.Unlock()
	}
	return false
}

// SetLongPressEnabled toggles long-press detection on the sensor.
func (p *Policy) SetLongPressEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if enabled {
		p.updateStatus(vendorsvc.StatusEnableLongPress)
	} else {
		p.updateStatus(vendorsvc.StatusDisableLongPress)
	}
}

// transition must be called with mu held.
func (p *Policy) transition(to State) {
	if p.state != to {
		log.Debug().Stringer("from", p.state).Stringer("to", to).Msg("Sensor state changed")
	}
	p.state = to
}

func (p *Policy) updateStatus(code vendorsvc.StatusCode) {
	if err := p.fingerprint.UpdateStatus(code); err != nil {
		log.Error().Err(err).Stringer("status", code).Msg("Failed to update fingerprint status")
	}
}

func (p *Policy) setMode(mode vendorsvc.Mode, value int32) {
	if err := p.display.SetMode(mode, value); err != nil {
		log.Error().Err(err).Stringer("mode", mode).Int32("value", value).Msg("Failed to set display mode")
	}
}
