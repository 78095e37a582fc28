package metrics

import (
	"math"

	"github.com/san-kum/eostab/internal/sim"
)

// Probe extracts a scalar from a state. It reports false when the value is
// unavailable, in which case the sample is skipped.
type Probe func(x sim.State, t float64) (float64, bool)

// Component probes a single entry of the state vector.
func Component(i int) Probe {
	return func(x sim.State, t float64) (float64, bool) {
		if i < 0 || i >= len(x) {
			return 0, false
		}
		return x[i], true
	}
}

type Peak struct {
	name    string
	probe   Probe
	peak    float64
	samples int
}

func NewPeak(name string, probe Probe) *Peak {
	return &Peak{name: name, probe: probe}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x sim.State, t float64) {
	v, ok := p.probe(x, t)
	if !ok {
		return
	}
	if p.samples == 0 || v > p.peak {
		p.peak = v
	}
	p.samples++
}

func (p *Peak) Value() float64 {
	if p.samples == 0 {
		return math.NaN()
	}
	return p.peak
}

func (p *Peak) Reset() {
	p.peak = 0
	p.samples = 0
}

// Final keeps the last probed value.
type Final struct {
	name  string
	probe Probe
	last  float64
	seen  bool
}

func NewFinal(name string, probe Probe) *Final {
	return &Final{name: name, probe: probe}
}

func (f *Final) Name() string { return f.name }

func (f *Final) Observe(x sim.State, t float64) {
	if v, ok := f.probe(x, t); ok {
		f.last = v
		f.seen = true
	}
}

func (f *Final) Value() float64 {
	if !f.seen {
		return math.NaN()
	}
	return f.last
}

func (f *Final) Reset() {
	f.last = 0
	f.seen = false
}

// Gauge reports an externally maintained value, such as a counter kept by
// the system under integration.
type Gauge struct {
	name string
	read func() float64
	base float64
}

func NewGauge(name string, read func() float64) *Gauge {
	return &Gauge{name: name, read: read, base: read()}
}

func (g *Gauge) Name() string { return g.name }

func (g *Gauge) Observe(x sim.State, t float64) {}

// Value returns the change since the last reset.
func (g *Gauge) Value() float64 { return g.read() - g.base }

func (g *Gauge) Reset() { g.base = g.read() }
