// SPDX-License-Identifier: GPL-3.0-only

package inscreen

//go:generate mockgen -source=registry.go -destination=mocks/sink_mock.go -package=mocks

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Sink receives finger contact notifications on behalf of the authentication client.
// A returned error is a delivery failure; it is logged and never retried.
type Sink interface {
	FingerDown() error
	FingerUp() error
}

// Registry holds at most one Sink.
//
// Thread safety:
//   - slotMu protects the sink reference and is held only to read or replace it.
//   - deliverMu serializes read-and-invoke pairs so every event is delivered to exactly
//     one snapshot of the slot. Register never takes it, so a sink may re-register
//     from inside its own callback.
type Registry struct {
	deliverMu sync.Mutex
	slotMu    sync.RWMutex
	sink      Sink
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register replaces the current sink. A nil sink clears the slot.
func (r *Registry) Register(sink Sink) {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()
	r.sink = sink
}

// Registered reports whether a sink is present.
func (r *Registry) Registered() bool {
	return r.current() != nil
}

// NotifyDown delivers a finger-down event. It returns false when no sink is registered.
func (r *Registry) NotifyDown() bool {
	return r.notify("FingerDown", Sink.FingerDown)
}

// NotifyUp delivers a finger-up event. It returns false when no sink is registered.
func (r *Registry) NotifyUp() bool {
	return r.notify("FingerUp", Sink.FingerUp)
}

func (r *Registry) current() Sink {
	r.slotMu.RLock()
	defer r.slotMu.RUnlock()
	return r.sink
}

func (r *Registry) notify(event string, deliver func(Sink) error) bool {
	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()

	sink := r.current()
	if sink == nil {
		log.Debug().Str("event", event).Msg("No callback registered, dropping event")
		return false
	}

	if err := deliver(sink); err != nil {
		log.Error().Err(err).Str("event", event).Msg("Failed to deliver finger event")
	}
	return true
}
