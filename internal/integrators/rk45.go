package integrators

import (
	"math"

	"github.com/san-kum/eostab/internal/sim"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

var _ sim.AdaptiveIntegrator = (*RK45)(nil)

type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Step takes a full step of dt regardless of the error estimate.
func (r *RK45) Step(sys sim.System, x sim.State, t, dt float64) (sim.State, error) {
	xNew, _, err := r.attempt(sys, x, t, dt)
	return xNew, err
}

// StepAdaptive rejects the step when the scaled error exceeds tol, returning
// a zero step taken and a smaller proposal.
func (r *RK45) StepAdaptive(sys sim.System, x sim.State, t, dt, tol float64) (sim.State, float64, float64, error) {
	xNew, errMax, err := r.attempt(sys, x, t, dt)
	if err != nil {
		return nil, 0, 0, err
	}

	errRatio := errMax / tol
	if errRatio > 1 {
		scale := math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
		return nil, 0, dt * scale, nil
	}

	dtNew := dt * r.maxScale
	if errRatio > 0 {
		dtNew = dt * math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	}
	return xNew, dt, dtNew, nil
}

func (r *RK45) attempt(sys sim.System, x sim.State, t, dt float64) (sim.State, float64, error) {
	n := len(x)
	var k [7]sim.State
	var err error

	if k[0], err = sys.Derive(x, t); err != nil {
		return nil, 0, err
	}

	stage := func(c float64, coeffs ...float64) (sim.State, error) {
		xs := make(sim.State, n)
		for i := 0; i < n; i++ {
			sum := 0.0
			for j, b := range coeffs {
				sum += b * k[j][i]
			}
			xs[i] = x[i] + dt*sum
		}
		return sys.Derive(xs, t+c*dt)
	}

	if k[1], err = stage(a2, b21); err != nil {
		return nil, 0, err
	}
	if k[2], err = stage(a3, b31, b32); err != nil {
		return nil, 0, err
	}
	if k[3], err = stage(a4, b41, b42, b43); err != nil {
		return nil, 0, err
	}
	if k[4], err = stage(a5, b51, b52, b53, b54); err != nil {
		return nil, 0, err
	}
	if k[5], err = stage(1, b61, b62, b63, b64, b65); err != nil {
		return nil, 0, err
	}

	xNew := make(sim.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k[0][i]+c3*k[2][i]+c4*k[3][i]+c5*k[4][i]+c6*k[5][i])
	}

	if k[6], err = sys.Derive(xNew, t+dt); err != nil {
		return nil, 0, err
	}

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k[0][i] + dc3*k[2][i] + dc4*k[3][i] + dc5*k[4][i] + dc6*k[5][i] + dc7*k[6][i])
		scale := math.Abs(x[i]) + math.Abs(dt*k[0][i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	return xNew, errMax, nil
}
