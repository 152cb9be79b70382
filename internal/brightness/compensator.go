// SPDX-License-Identifier: GPL-3.0-only

package brightness

const (
	// MaxBrightness is the top of the platform brightness domain.
	MaxBrightness = 255

	// MaxNative is the top of the panel's native brightness domain the calibration is expressed in.
	MaxNative = 1023

	// DefaultScale is the percentage applied to the interpolated compensation.
	DefaultScale = 70
)

// Compensator turns platform brightness into a dim amount.
// The zero value is disabled and always returns 0.
type Compensator struct {
	table   Table
	scale   int
	enabled bool
}

// NewCompensator creates a compensator over table scaled by scale percent.
// When enabled is false every query returns 0.
func NewCompensator(table Table, scale int, enabled bool) *Compensator {
	return &Compensator{
		table:   table,
		scale:   scale,
		enabled: enabled,
	}
}

// Enabled reports whether compensation is active.
func (c *Compensator) Enabled() bool {
	return c.enabled
}

// Amount returns the dim amount for brightness in the 0-255 platform domain.
// Values outside that domain are not clamped; they scale past the table and clamp there.
func (c *Compensator) Amount(brightness int) int {
	if !c.enabled {
		return 0
	}
	native := brightness * MaxNative / MaxBrightness
	alpha := c.table.Lookup(native)
	return alpha * c.scale / 100
}

// Rescale maps a raw backlight level in [0, maxLevel] into the 0-255 platform domain.
// Levels are clamped to the range and a non-positive maxLevel yields 0.
func Rescale(level, maxLevel int) int {
	if maxLevel <= 0 {
		return 0
	}
	if level < 0 {
		level = 0
	}
	if level > maxLevel {
		level = maxLevel
	}
	return level * MaxBrightness / maxLevel
}
