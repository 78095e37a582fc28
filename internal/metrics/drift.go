package metrics

import (
	"math"

	"github.com/san-kum/eostab/internal/sim"
)

// Drift tracks the largest relative departure of a conserved quantity from
// its first observed value.
type Drift struct {
	name     string
	probe    Probe
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift(name string, probe Probe) *Drift {
	return &Drift{name: name, probe: probe}
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(x sim.State, t float64) {
	v, ok := d.probe(x, t)
	if !ok {
		return
	}
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(v-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *Drift) Value() float64 {
	return d.maxDrift
}

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}

// Mean averages the probe over the observed samples.
type Mean struct {
	name    string
	probe   Probe
	sum     float64
	samples int
}

func NewMean(name string, probe Probe) *Mean {
	return &Mean{name: name, probe: probe}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(x sim.State, t float64) {
	if v, ok := m.probe(x, t); ok {
		m.sum += v
		m.samples++
	}
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}
