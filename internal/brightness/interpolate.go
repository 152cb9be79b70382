package brightness

// Interpolate maps x onto the segment (xa, ya)-(xb, yb) using the panel's fixed-point rule.
//
// All divisions truncate toward zero. The linear part is computed at double resolution and
// split into a whole step and the odd half-step it loses when halved. A curvature term
// derived from the distance to both endpoints is added when the segment has non-zero rise.
// xa must differ from xb.
func Interpolate(x, xa, xb, ya, yb int) int {
	bf := 2 * (yb - ya) * (x - xa) / (xb - xa)
	factor := bf / 2
	plus := bf % 2

	sub := 0
	if xa-xb != 0 && yb-ya != 0 {
		sub = 2 * (x - xa) * (x - xb) / (yb - ya) / (xa - xb)
	}

	return ya + factor + plus + sub
}

// Lookup returns the compensation for a native brightness value.
// Values at or below the first input clamp to the first output, values above the last
// input clamp to the last output, everything else interpolates within its bracket.
// An empty table yields 0.
func (t Table) Lookup(x int) int {
	n := len(t.samples)
	if n == 0 {
		return 0
	}

	i := 0
	for ; i < n; i++ {
		if t.samples[i].Input >= x {
			break
		}
	}

	if i == 0 {
		return t.samples[0].Output
	}
	if i == n {
		return t.samples[n-1].Output
	}

	lo, hi := t.samples[i-1], t.samples[i]
	return Interpolate(x, lo.Input, hi.Input, lo.Output, hi.Output)
}
