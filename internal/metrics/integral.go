package metrics

import "github.com/san-kum/eostab/internal/sim"

// Integral accumulates the time integral of the probe with the trapezoid
// rule over the observed samples.
type Integral struct {
	name   string
	probe  Probe
	sum    float64
	lastV  float64
	lastT  float64
	primed bool
}

func NewIntegral(name string, probe Probe) *Integral {
	return &Integral{name: name, probe: probe}
}

func (g *Integral) Name() string { return g.name }

func (g *Integral) Observe(x sim.State, t float64) {
	v, ok := g.probe(x, t)
	if !ok {
		return
	}
	if g.primed && t > g.lastT {
		g.sum += 0.5 * (v + g.lastV) * (t - g.lastT)
	}
	g.lastV = v
	g.lastT = t
	g.primed = true
}

func (g *Integral) Value() float64 { return g.sum }

func (g *Integral) Reset() {
	g.sum = 0
	g.lastV = 0
	g.lastT = 0
	g.primed = false
}
