// Package hid drives the panel controller's vendor HID interface, used as the display
// service on hardware that does not expose one on the bus.
package hid

//go:generate mockgen -source=device.go -destination=mocks/device_mock.go -package=mocks

// DeviceInfo contains information about a HID device.
type DeviceInfo struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	Serial       string
	Manufacturer string
	Product      string
	Interface    int
}

// Device represents an interface for HID device operations.
// This interface allows for mocking in tests.
type Device interface {
	// SendFeatureReport writes a feature report to the device.
	// The first byte is the report ID.
	SendFeatureReport(data []byte) (int, error)

	// Close closes the device handle.
	Close() error

	// Info returns information about the device.
	Info() DeviceInfo
}
