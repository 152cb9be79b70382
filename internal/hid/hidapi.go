package hid

import (
	"fmt"

	karalabehid "github.com/karalabe/hid"
)

// HIDAPIDevice wraps a karalabe/hid device to implement the Device interface.
type HIDAPIDevice struct {
	device karalabehid.Device // karalabe/hid.Device is an interface
	info   DeviceInfo
}

// Verify HIDAPIDevice implements Device interface.
var _ Device = (*HIDAPIDevice)(nil)

// NewHIDAPIDevice creates a new HIDAPIDevice from an open hid.Device.
func NewHIDAPIDevice(device karalabehid.Device, info DeviceInfo) *HIDAPIDevice {
	return &HIDAPIDevice{
		device: device,
		info:   info,
	}
}

// SendFeatureReport writes a feature report to the device.
func (d *HIDAPIDevice) SendFeatureReport(data []byte) (int, error) {
	return d.device.SendFeatureReport(data)
}

// Close closes the device handle.
func (d *HIDAPIDevice) Close() error {
	return d.device.Close()
}

// Info returns information about the device.
func (d *HIDAPIDevice) Info() DeviceInfo {
	return d.info
}

// OpenPanel opens the first HID interface matching vendorID and productID.
func OpenPanel(vendorID, productID uint16) (*HIDAPIDevice, error) {
	devices, err := karalabehid.Enumerate(vendorID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no panel controller found for %04x:%04x", vendorID, productID)
	}

	deviceInfo := devices[0]
	device, err := deviceInfo.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open panel controller %s: %w", deviceInfo.Path, err)
	}

	info := DeviceInfo{
		Path:         deviceInfo.Path,
		VendorID:     deviceInfo.VendorID,
		ProductID:    deviceInfo.ProductID,
		Serial:       deviceInfo.Serial,
		Manufacturer: deviceInfo.Manufacturer,
		Product:      deviceInfo.Product,
		Interface:    deviceInfo.Interface,
	}

	return NewHIDAPIDevice(device, info), nil
}
