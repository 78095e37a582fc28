package kinetics

import (
	"fmt"
	"math"

	"github.com/san-kum/eostab/internal/eos"
	"github.com/san-kum/eostab/internal/mechanism"
)

func power(c, nu float64) float64 {
	switch nu {
	case 1:
		return c
	case 2:
		return c * c
	}
	return math.Pow(c, nu)
}

func progress(c []float64, terms []mechanism.Stoich) float64 {
	q := 1.0
	for _, t := range terms {
		q *= power(c[t.Species], t.Coeff)
	}
	return q
}

// ReactionRates fills rates with species mass production rates [kg/m³/s]
// and returns the energy release rate -Σ ω_i h_f,i [W/m³]. Negative mass
// fractions contribute zero concentration.
func (b *Backend) ReactionRates(massFractions []float64, temperature, density float64, rates []float64) (float64, error) {
	n := b.NumSpecies()
	if err := eos.CheckLength("mass fractions", massFractions, n); err != nil {
		return 0, err
	}
	if err := eos.CheckLength("rates", rates, n); err != nil {
		return 0, err
	}
	if !(temperature > 0) || !(density > 0) {
		return 0, fmt.Errorf("%w: T=%g rho=%g", ErrInvalidState, temperature, density)
	}

	c := make([]float64, n)
	g := make([]float64, n)
	for i, y := range massFractions {
		c[i] = density * math.Max(y, 0) / b.mw[i]
		g[i] = b.mech.Species[i].Thermo.GRT(temperature)
	}
	wdot := make([]float64, n)

	rt := GasConstant * temperature
	for _, r := range b.mech.Reactions {
		kf := r.Rate.A * math.Pow(temperature, r.Rate.B) * math.Exp(-r.Rate.Ea/rt)
		q := kf * progress(c, r.Reactants)
		if r.Reversible {
			dg, dn := 0.0, 0.0
			for _, t := range r.Products {
				dg += t.Coeff * g[t.Species]
				dn += t.Coeff
			}
			for _, t := range r.Reactants {
				dg -= t.Coeff * g[t.Species]
				dn -= t.Coeff
			}
			kc := math.Exp(-dg) * math.Pow(ReferencePressure/rt, dn)
			q -= kf / kc * progress(c, r.Products)
		}
		if r.ThirdBody {
			m := 0.0
			for i, eff := range r.Efficiencies {
				m += eff * c[i]
			}
			q *= m
		}
		for _, t := range r.Products {
			wdot[t.Species] += t.Coeff * q
		}
		for _, t := range r.Reactants {
			wdot[t.Species] -= t.Coeff * q
		}
	}

	release := 0.0
	for i := range rates {
		rates[i] = wdot[i] * b.mw[i]
		release -= rates[i] * b.hf[i]
	}
	return release, nil
}
