// SPDX-License-Identifier: GPL-3.0-only

// Package profile describes the hardware generations the overlay daemon supports.
package profile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shini4i/fod-inscreen-daemon/internal/brightness"
)

// ErrUnknownProfile is returned when a profile name is not registered.
var ErrUnknownProfile = errors.New("unknown profile")

// Coupling selects what drives display dimming on a hardware generation.
type Coupling int

const (
	// DimWithOverlay dims while the fingerprint icon is shown and gates presses
	// and finger events on its visibility.
	DimWithOverlay Coupling = iota
	// DimWithEnroll dims on press during enrollment and forwards finger events ungated.
	DimWithEnroll
)

// String returns a readable coupling name.
func (c Coupling) String() string {
	switch c {
	case DimWithOverlay:
		return "overlay"
	case DimWithEnroll:
		return "enroll"
	default:
		return fmt.Sprintf("coupling(%d)", int(c))
	}
}

// Profile is the static configuration for one hardware generation.
type Profile struct {
	Name     string
	Coupling Coupling

	// With CompensationEnabled false the compensation amount is always 0.
	// CompensationScale is the percentage applied to the value read from Table.
	CompensationEnabled bool
	CompensationScale   int
	Table               brightness.Table

	BoostBrightness bool
	PositionX       int32
	PositionY       int32
	Size            int32
}

// Compensator builds the brightness compensator for this profile.
func (p Profile) Compensator() *brightness.Compensator {
	return brightness.NewCompensator(p.Table, p.CompensationScale, p.CompensationEnabled)
}

const (
	defaultPositionX int32 = 444
	defaultPositionY int32 = 1966
	defaultSize      int32 = 190
)

var registry = map[string]Profile{
	"a": {
		Name:                "a",
		Coupling:            DimWithOverlay,
		CompensationEnabled: true,
		CompensationScale:   brightness.DefaultScale,
		Table:               brightness.DefaultTable(),
		PositionX:           defaultPositionX,
		PositionY:           defaultPositionY,
		Size:                defaultSize,
	},
	"b": {
		Name:                "b",
		Coupling:            DimWithEnroll,
		CompensationEnabled: false,
		CompensationScale:   brightness.DefaultScale,
		Table:               brightness.DefaultTable(),
		PositionX:           defaultPositionX,
		PositionY:           defaultPositionY,
		Size:                defaultSize,
	},
}

// Lookup returns the profile registered under name.
func Lookup(name string) (Profile, error) {
	p, ok := registry[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownProfile, name, Names())
	}
	return p, nil
}

// Names returns the registered profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
