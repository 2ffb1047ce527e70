// Package diagnostics reduces coupling output into the quantities the demo
// cases report: drag force along the flow direction and its coefficient.
package diagnostics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Ali-7800/SophT-Simulator/internal/grid"
)

// StreamwiseForce sums the marker forcing component along axis and returns
// its magnitude.
func StreamwiseForce[T grid.Real](markerForcing [][]T, axis int) float64 {
	comp := markerForcing[axis]
	buf := make([]float64, len(comp))
	for i, f := range comp {
		buf[i] = float64(f)
	}
	return math.Abs(floats.Sum(buf))
}

// DragScale is the dynamic-pressure normalization 0.5*rho*U^2*A.
func DragScale(density, speed, refArea float64) float64 {
	return 0.5 * density * speed * speed * refArea
}

// DragCoefficient normalizes a streamwise force by a drag scale.
func DragCoefficient(force, scale float64) float64 {
	if scale == 0 {
		return 0
	}
	return force / scale
}
