package metrics

import (
	"math"

	"github.com/san-kum/eostab/internal/sim"
)

// Bounds reports the fraction of samples whose probe value stayed inside
// [lo, hi]. Unavailable or non-finite values count as violations.
type Bounds struct {
	name       string
	probe      Probe
	lo, hi     float64
	violations int
	samples    int
}

func NewBounds(name string, probe Probe, lo, hi float64) *Bounds {
	return &Bounds{name: name, probe: probe, lo: lo, hi: hi}
}

func (b *Bounds) Name() string {
	return b.name
}

func (b *Bounds) Observe(x sim.State, t float64) {
	b.samples++
	v, ok := b.probe(x, t)
	if !ok || math.IsNaN(v) || v < b.lo || v > b.hi {
		b.violations++
	}
}

func (b *Bounds) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounds) Reset() {
	b.violations = 0
	b.samples = 0
}
