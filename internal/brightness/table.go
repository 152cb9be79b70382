// SPDX-License-Identifier: GPL-3.0-only

// Package brightness converts panel brightness into the dim compensation applied
// while the fingerprint sensor is imaging through the display.
package brightness

import (
	"errors"
	"fmt"
)

// ErrEmptyTable is returned when a calibration table has no samples.
var ErrEmptyTable = errors.New("calibration table is empty")

// ErrUnsortedTable is returned when sample inputs are not strictly ascending.
var ErrUnsortedTable = errors.New("calibration inputs must be strictly ascending")

// Sample is a single calibration anchor: the compensation measured at a native brightness level.
type Sample struct {
	Input  int
	Output int
}

// Table is an immutable, ascending set of calibration samples.
// Outputs are not required to be monotonic.
type Table struct {
	samples []Sample
}

// NewTable validates and copies the given samples.
// A single sample is accepted; every lookup then returns its output.
func NewTable(samples ...Sample) (Table, error) {
	if len(samples) == 0 {
		return Table{}, ErrEmptyTable
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].Input <= samples[i-1].Input {
			return Table{}, fmt.Errorf("%w: sample %d input %d follows %d",
				ErrUnsortedTable, i, samples[i].Input, samples[i-1].Input)
		}
	}

	owned := make([]Sample, len(samples))
	copy(owned, samples)
	return Table{samples: owned}, nil
}

// MustTable is like NewTable but panics on invalid input. Intended for package-level tables.
func MustTable(samples ...Sample) Table {
	t, err := NewTable(samples...)
	if err != nil {
		panic(err)
	}
	return t
}

// defaultSamples is the panel calibration in the native 0-1023 domain.
// The 2000 entry deliberately rises again past full brightness.
var defaultSamples = []Sample{
	{0, 0xff},
	{1, 0xf1},
	{2, 0xec},
	{4, 0xeb},
	{5, 0xea},
	{6, 0xe8},
	{10, 0xe4},
	{20, 0xdc},
	{30, 0xd4},
	{45, 0xcc},
	{70, 0xbe},
	{100, 0xb3},
	{150, 0xa6},
	{227, 0x90},
	{300, 0x83},
	{400, 0x70},
	{500, 0x60},
	{600, 0x53},
	{800, 0x3c},
	{1023, 0x22},
	{2000, 0x83},
}

// DefaultTable returns the calibration table shipped with the panel.
func DefaultTable() Table {
	return MustTable(defaultSamples...)
}

// Len returns the number of samples.
func (t Table) Len() int {
	return len(t.samples)
}

// Sample returns the i-th sample in ascending input order.
func (t Table) Sample(i int) Sample {
	return t.samples[i]
}

// Samples returns a copy of all samples.
func (t Table) Samples() []Sample {
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}
