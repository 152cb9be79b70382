package dbus

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/shini4i/fod-inscreen-daemon/internal/inscreen"
)

// callbackTimeout bounds a single callback delivery.
const callbackTimeout = time.Second

// callbackObject is the part of dbus.BusObject used to reach a registered client.
type callbackObject interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
	Destination() string
}

// BusSink delivers finger events to a client object implementing CallbackInterface.
type BusSink struct {
	obj callbackObject
}

// Verify BusSink implements inscreen.Sink interface.
var _ inscreen.Sink = (*BusSink)(nil)

// NewBusSink wraps the client object.
func NewBusSink(obj callbackObject) *BusSink {
	return &BusSink{obj: obj}
}

// FingerDown calls FingerDown on the client.
func (b *BusSink) FingerDown() error {
	return b.call("FingerDown")
}

// FingerUp calls FingerUp on the client.
func (b *BusSink) FingerUp() error {
	return b.call("FingerUp")
}

func (b *BusSink) call(method string) error {
	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()

	call := b.obj.CallWithContext(ctx, CallbackInterface+"."+method, 0)
	if call.Err != nil {
		return fmt.Errorf("%s on %s: %w", method, b.obj.Destination(), call.Err)
	}
	return nil
}
