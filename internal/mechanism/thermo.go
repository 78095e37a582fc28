package mechanism

import (
	"fmt"
	"math"
)

// NASA7 holds two-range 7-coefficient polynomials. Low applies below Tmid,
// High at or above it; both extrapolate outside [Tmin, Tmax].
type NASA7 struct {
	Tmin, Tmid, Tmax float64
	Low, High        [7]float64
}

func newNASA7(ranges []float64, data [][]float64) (NASA7, error) {
	var n NASA7
	if len(ranges) != 3 {
		return n, fmt.Errorf("NASA7 needs 3 temperature bounds, got %d", len(ranges))
	}
	if !(ranges[0] < ranges[1] && ranges[1] < ranges[2]) {
		return n, fmt.Errorf("NASA7 temperature bounds %v are not increasing", ranges)
	}
	if len(data) != 2 || len(data[0]) != 7 || len(data[1]) != 7 {
		return n, fmt.Errorf("NASA7 needs two rows of 7 coefficients")
	}
	n.Tmin, n.Tmid, n.Tmax = ranges[0], ranges[1], ranges[2]
	copy(n.Low[:], data[0])
	copy(n.High[:], data[1])
	return n, nil
}

func (n *NASA7) coeffs(T float64) *[7]float64 {
	if T < n.Tmid {
		return &n.Low
	}
	return &n.High
}

// CpR returns cp/R.
func (n *NASA7) CpR(T float64) float64 {
	a := n.coeffs(T)
	return a[0] + T*(a[1]+T*(a[2]+T*(a[3]+T*a[4])))
}

// HRT returns h/(RT).
func (n *NASA7) HRT(T float64) float64 {
	a := n.coeffs(T)
	return a[0] + T*(a[1]/2+T*(a[2]/3+T*(a[3]/4+T*a[4]/5))) + a[5]/T
}

// SR returns s/R at the reference pressure.
func (n *NASA7) SR(T float64) float64 {
	a := n.coeffs(T)
	return a[0]*math.Log(T) + T*(a[1]+T*(a[2]/2+T*(a[3]/3+T*a[4]/4))) + a[6]
}

// GRT returns g/(RT) = h/(RT) - s/R.
func (n *NASA7) GRT(T float64) float64 {
	return n.HRT(T) - n.SR(T)
}
