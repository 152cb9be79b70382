// SPDX-License-Identifier: GPL-3.0-only

// Package dbus exposes the fingerprint overlay service on D-Bus.
package dbus

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/rs/zerolog/log"
	"github.com/shini4i/fod-inscreen-daemon/internal/inscreen"
	"golang.org/x/time/rate"
)

// ErrRateLimitExceeded is returned when client requests exceed the rate limit.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// ErrInvalidCallbackPath is returned when a callback is registered with a malformed object path.
var ErrInvalidCallbackPath = errors.New("invalid callback object path")

// ErrNotConnected is returned when a bus-backed sink is requested before Start.
var ErrNotConnected = errors.New("not connected to the bus")

const (
	// rateLimitPerSecond is the maximum number of client mutations per second.
	rateLimitPerSecond = 10

	// rateLimitBurst is the maximum burst size for client mutations.
	rateLimitBurst = 5
)

const (
	// ServiceName is the D-Bus service name.
	ServiceName = "io.github.shini4i.FodInscreen"

	// ObjectPath is the D-Bus object path.
	ObjectPath = "/io/github/shini4i/FodInscreen"

	// InterfaceName is the D-Bus interface name.
	InterfaceName = "io.github.shini4i.FodInscreen"

	// CallbackInterface is the interface registered clients implement.
	CallbackInterface = "io.github.shini4i.FodInscreen.Callback"
)

// IntrospectXML is the D-Bus introspection XML for the service.
const IntrospectXML = `
<node name="` + ObjectPath + `">
  <interface name="` + InterfaceName + `">
    <method name="StartEnroll"/>
    <method name="FinishEnroll"/>
    <method name="Press"/>
    <method name="Release"/>
    <method name="ShowOverlay"/>
    <method name="HideOverlay"/>
    <method name="HandleAcquired">
      <arg name="info" type="i" direction="in"/>
      <arg name="vendorCode" type="i" direction="in"/>
      <arg name="handled" type="b" direction="out"/>
    </method>
    <method name="HandleError">
      <arg name="error" type="i" direction="in"/>
      <arg name="vendorCode" type="i" direction="in"/>
      <arg name="handled" type="b" direction="out"/>
    </method>
    <method name="SetLongPressEnabled">
      <arg name="enabled" type="b" direction="in"/>
    </method>
    <method name="GetCompensationAmount">
      <arg name="brightness" type="i" direction="in"/>
      <arg name="amount" type="i" direction="out"/>
    </method>
    <method name="ShouldBoostBrightness">
      <arg name="boost" type="b" direction="out"/>
    </method>
    <method name="GetOverlayPosition">
      <arg name="x" type="i" direction="out"/>
      <arg name="y" type="i" direction="out"/>
    </method>
    <method name="GetOverlaySize">
      <arg name="size" type="i" direction="out"/>
    </method>
    <method name="RegisterCallback">
      <arg name="path" type="o" direction="in"/>
    </method>
    <signal name="CompensationChanged">
      <arg name="brightness" type="i"/>
      <arg name="amount" type="i"/>
    </signal>
  </interface>
  ` + introspect.IntrospectDataString + `
</node>
`

// Overlay is the inbound surface the server dispatches to.
// This allows for mocking in tests.
type Overlay interface {
	StartEnroll()
	FinishEnroll()
	Press()
	Release()
	ShowOverlay()
	HideOverlay()
	HandleAcquired(info, vendorCode int32) bool
	HandleError(code, vendorCode int32) bool
	SetLongPressEnabled(enabled bool)
	CompensationAmount(brightness int32) int32
	ShouldBoostBrightness() bool
	OverlayPosition() (x, y int32)
	OverlaySize() int32
	RegisterCallback(sink inscreen.Sink)
}

// SinkFactory builds a sink delivering to the object at path owned by sender.
type SinkFactory func(sender dbus.Sender, path dbus.ObjectPath) (inscreen.Sink, error)

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithSinkFactory overrides how registered callbacks are turned into sinks.
func WithSinkFactory(fn SinkFactory) ServerOption {
	return func(s *Server) {
		s.newSink = fn
	}
}

// Server implements the D-Bus service for the fingerprint overlay.
//
// Thread safety:
//   - godbus dispatches method calls concurrently; Overlay implementations serialize
//     their own state.
//   - The connMu mutex protects the D-Bus connection field for signal emission and
//     sink creation.
type Server struct {
	conn        *dbus.Conn
	connMu      sync.RWMutex // Protects conn field only
	overlay     Overlay
	rateLimiter *rate.Limiter
	newSink     SinkFactory
}

// NewServer creates a new D-Bus server dispatching to overlay.
func NewServer(overlay Overlay, opts ...ServerOption) *Server {
	s := &Server{
		overlay:     overlay,
		rateLimiter: rate.NewLimiter(rateLimitPerSecond, rateLimitBurst),
	}
	s.newSink = s.busSink
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens the named bus: "session" or "system".
func Connect(bus string) (*dbus.Conn, error) {
	switch bus {
	case "session":
		return dbus.ConnectSessionBus()
	case "system":
		return dbus.ConnectSystemBus()
	default:
		return nil, fmt.Errorf("unknown bus %q (expected session or system)", bus)
	}
}

// Start exports the service on conn and requests the service name.
// The connection stays owned by the caller.
func (s *Server) Start(conn *dbus.Conn) error {
	err := conn.Export(s, ObjectPath, InterfaceName)
	if err != nil {
		return fmt.Errorf("failed to export server: %w", err)
	}

	err = conn.Export(introspect.Introspectable(IntrospectXML), ObjectPath, "org.freedesktop.DBus.Introspectable")
	if err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("name %s already taken", ServiceName)
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	log.Info().Str("service", ServiceName).Msg("D-Bus service started")
	return nil
}

// Stop releases the service name and unexports the object.
func (s *Server) Stop() error {
	s.connMu.Lock()
	conn := s.conn
	s.conn = nil
	s.connMu.Unlock()

	if conn == nil {
		return nil
	}

	if err := conn.Export(nil, ObjectPath, InterfaceName); err != nil {
		log.Warn().Err(err).Msg("Failed to unexport server")
	}
	if _, err := conn.ReleaseName(ServiceName); err != nil {
		return fmt.Errorf("failed to release name: %w", err)
	}
	return nil
}

// StartEnroll begins an enrollment session.
func (s *Server) StartEnroll() *dbus.Error {
	s.overlay.StartEnroll()
	return nil
}

// FinishEnroll ends the enrollment session.
func (s *Server) FinishEnroll() *dbus.Error {
	s.overlay.FinishEnroll()
	return nil
}

// Press reports a finger press on the overlay.
func (s *Server) Press() *dbus.Error {
	s.overlay.Press()
	return nil
}

// Release reports the finger leaving the overlay.
func (s *Server) Release() *dbus.Error {
	s.overlay.Release()
	return nil
}

// ShowOverlay reports the fingerprint icon being shown.
func (s *Server) ShowOverlay() *dbus.Error {
	s.overlay.ShowOverlay()
	return nil
}

// HideOverlay reports the fingerprint icon being hidden.
func (s *Server) HideOverlay() *dbus.Error {
	s.overlay.HideOverlay()
	return nil
}

// HandleAcquired forwards an acquisition event and reports whether it was consumed.
func (s *Server) HandleAcquired(info, vendorCode int32) (bool, *dbus.Error) {
	handled := s.overlay.HandleAcquired(info, vendorCode)
	log.Debug().Int32("info", info).Int32("vendorCode", vendorCode).Bool("handled", handled).Msg("Handled acquired event")
	return handled, nil
}

// HandleError reports whether a sensor error was consumed.
func (s *Server) HandleError(code, vendorCode int32) (bool, *dbus.Error) {
	handled := s.overlay.HandleError(code, vendorCode)
	log.Debug().Int32("error", code).Int32("vendorCode", vendorCode).Bool("handled", handled).Msg("Handled error event")
	return handled, nil
}

// SetLongPressEnabled toggles long-press detection on the sensor.
func (s *Server) SetLongPressEnabled(enabled bool) *dbus.Error {
	if !s.rateLimiter.Allow() {
		log.Warn().Msg("Rate limit exceeded for SetLongPressEnabled")
		return dbus.MakeFailedError(ErrRateLimitExceeded)
	}

	s.overlay.SetLongPressEnabled(enabled)
	return nil
}

// GetCompensationAmount returns the dim amount for a platform brightness.
func (s *Server) GetCompensationAmount(brightness int32) (int32, *dbus.Error) {
	return s.overlay.CompensationAmount(brightness), nil
}

// ShouldBoostBrightness reports whether brightness is raised while imaging.
func (s *Server) ShouldBoostBrightness() (bool, *dbus.Error) {
	return s.overlay.ShouldBoostBrightness(), nil
}

// GetOverlayPosition returns the overlay position in panel pixels.
func (s *Server) GetOverlayPosition() (int32, int32, *dbus.Error) {
	x, y := s.overlay.OverlayPosition()
	return x, y, nil
}

// GetOverlaySize returns the overlay size in panel pixels.
func (s *Server) GetOverlaySize() (int32, *dbus.Error) {
	return s.overlay.OverlaySize(), nil
}

// RegisterCallback makes the object at path, owned by the caller, the callback sink.
// An empty path clears the registration.
func (s *Server) RegisterCallback(sender dbus.Sender, path dbus.ObjectPath) *dbus.Error {
	if !s.rateLimiter.Allow() {
		log.Warn().Msg("Rate limit exceeded for RegisterCallback")
		return dbus.MakeFailedError(ErrRateLimitExceeded)
	}

	if path == "" {
		s.overlay.RegisterCallback(nil)
		log.Info().Str("sender", string(sender)).Msg("Callback cleared")
		return nil
	}

	if !path.IsValid() {
		return dbus.MakeFailedError(fmt.Errorf("%w: %q", ErrInvalidCallbackPath, path))
	}

	sink, err := s.newSink(sender, path)
	if err != nil {
		log.Error().Err(err).Str("sender", string(sender)).Msg("Failed to create callback sink")
		return dbus.MakeFailedError(err)
	}

	s.overlay.RegisterCallback(sink)
	log.Info().Str("sender", string(sender)).Str("path", string(path)).Msg("Callback registered")
	return nil
}

// EmitCompensationChanged emits the CompensationChanged signal for a platform brightness.
func (s *Server) EmitCompensationChanged(brightness int32) {
	amount := s.overlay.CompensationAmount(brightness)

	s.connMu.RLock()
	conn := s.conn
	s.connMu.RUnlock()

	if conn == nil {
		return
	}

	err := conn.Emit(ObjectPath, InterfaceName+".CompensationChanged", brightness, amount)
	if err != nil {
		log.Error().Err(err).Msg("Failed to emit CompensationChanged signal")
	}
}

// busSink is the default SinkFactory. It targets the caller's unique name on the server's bus.
func (s *Server) busSink(sender dbus.Sender, path dbus.ObjectPath) (inscreen.Sink, error) {
	s.connMu.RLock()
	conn := s.conn
	s.connMu.RUnlock()

	if conn == nil {
		return nil, ErrNotConnected
	}
	return NewBusSink(conn.Object(string(sender), path)), nil
}
