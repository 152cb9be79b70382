// SPDX-License-Identifier: GPL-3.0-only

package vendorsvc

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
)

// ErrServiceUnavailable is returned when a vendor service has no owner on the bus.
var ErrServiceUnavailable = errors.New("vendor service unavailable")

const (
	// FingerprintServiceName is the bus name of the vendor fingerprint extensions service.
	FingerprintServiceName = "vendor.oneplus.FingerprintExtensions"

	// FingerprintObjectPath is the object path of the vendor fingerprint extensions service.
	FingerprintObjectPath = "/vendor/oneplus/FingerprintExtensions"

	// FingerprintInterface is the interface implementing UpdateStatus.
	FingerprintInterface = "vendor.oneplus.FingerprintExtensions"

	// DisplayServiceName is the bus name of the vendor display service.
	DisplayServiceName = "vendor.oneplus.Display"

	// DisplayObjectPath is the object path of the vendor display service.
	DisplayObjectPath = "/vendor/oneplus/Display"

	// DisplayInterface is the interface implementing SetMode.
	DisplayInterface = "vendor.oneplus.Display"
)

// asyncCaller is the part of dbus.BusObject used for fire-and-forget calls.
type asyncCaller interface {
	Go(method string, flags dbus.Flags, ch chan *dbus.Call, args ...interface{}) *dbus.Call
}

// syncCaller is the part of dbus.BusObject used for blocking calls.
type syncCaller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// BusFingerprint sends status commands to the vendor fingerprint service over D-Bus.
type BusFingerprint struct {
	obj asyncCaller
}

// Verify BusFingerprint implements FingerprintService interface.
var _ FingerprintService = (*BusFingerprint)(nil)

// NewBusFingerprint wraps a bus object exposing FingerprintInterface.
func NewBusFingerprint(obj asyncCaller) *BusFingerprint {
	return &BusFingerprint{obj: obj}
}

// UpdateStatus sends code without waiting for a reply.
func (f *BusFingerprint) UpdateStatus(code StatusCode) error {
	call := f.obj.Go(FingerprintInterface+".UpdateStatus", dbus.FlagNoReplyExpected, nil, int32(code))
	if call.Err != nil {
		return fmt.Errorf("failed to send status %s: %w", code, call.Err)
	}
	log.Debug().Stringer("status", code).Msg("Sent fingerprint status")
	return nil
}

// BusDisplay sends mode toggles to the vendor display service over D-Bus.
type BusDisplay struct {
	obj asyncCaller
}

// Verify BusDisplay implements DisplayService interface.
var _ DisplayService = (*BusDisplay)(nil)

// NewBusDisplay wraps a bus object exposing DisplayInterface.
func NewBusDisplay(obj asyncCaller) *BusDisplay {
	return &BusDisplay{obj: obj}
}

// SetMode sends the mode toggle without waiting for a reply.
func (d *BusDisplay) SetMode(mode Mode, value int32) error {
	call := d.obj.Go(DisplayInterface+".SetMode", dbus.FlagNoReplyExpected, nil, int32(mode), value)
	if call.Err != nil {
		return fmt.Errorf("failed to set mode %s=%d: %w", mode, value, call.Err)
	}
	log.Debug().Stringer("mode", mode).Int32("value", value).Msg("Sent display mode")
	return nil
}

// Resolve verifies that name currently has an owner on the bus reached through busObj,
// normally conn.BusObject().
func Resolve(busObj syncCaller, name string) error {
	var hasOwner bool
	if err := busObj.Call("org.freedesktop.DBus.NameHasOwner", 0, name).Store(&hasOwner); err != nil {
		return fmt.Errorf("failed to query owner of %s: %w", name, err)
	}
	if !hasOwner {
		return fmt.Errorf("%w: %s", ErrServiceUnavailable, name)
	}
	return nil
}

// ConnectFingerprint resolves the vendor fingerprint service on conn.
func ConnectFingerprint(conn *dbus.Conn) (*BusFingerprint, error) {
	if err := Resolve(conn.BusObject(), FingerprintServiceName); err != nil {
		return nil, err
	}
	return NewBusFingerprint(conn.Object(FingerprintServiceName, FingerprintObjectPath)), nil
}

// ConnectDisplay resolves the vendor display service on conn.
func ConnectDisplay(conn *dbus.Conn) (*BusDisplay, error) {
	if err := Resolve(conn.BusObject(), DisplayServiceName); err != nil {
		return nil, err
	}
	return NewBusDisplay(conn.Object(DisplayServiceName, DisplayObjectPath)), nil
}
