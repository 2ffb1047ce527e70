// Package immersed couples moving bodies to a fixed Eulerian flow grid with
// the penalty (virtual boundary) immersed-boundary method. A body is
// discretized into Lagrangian marker points by a ForcingGrid variant; the
// VirtualBoundaryForcing engine drives the flow velocity at the markers
// toward the body velocity through proportional-integral feedback forcing,
// and FlowInteraction reduces the marker forcing back into body-level
// forces and torques.
package immersed

import "github.com/Ali-7800/SophT-Simulator/internal/grid"

// ForcingGrid samples a body into Lagrangian markers. Implementations hold
// a read-only reference to the body and recompute marker kinematics from
// its current state; they never mutate the body. The marker count is fixed
// at construction.
//
// UpdatePositionField must be called before UpdateVelocityField within a
// coupling step; velocity updates may reuse geometry cached by the
// position pass.
type ForcingGrid[T grid.Real] interface {
	GridDim() int
	NumMarkers() int

	// PositionField and VelocityField expose the marker arrays, shape
	// [dim][markers]. Mutated in place by the update calls.
	PositionField() [][]T
	VelocityField() [][]T

	UpdatePositionField()
	UpdateVelocityField()

	// ForceDOFs and TorqueDOFs size the body-level accumulators the
	// reduction writes into: vectors per translational and rotational
	// degree of freedom (1 each for a rigid body, per node / per element
	// for a rod).
	ForceDOFs() int
	TorqueDOFs() int

	// TransferForcing reduces marker forcing (the force the coupling
	// exerts on the body, shape [dim][markers]) into the body force and
	// torque accumulators, overwriting them. Accumulators have 3 rows
	// regardless of grid dimension; planar grids use the z row for
	// torque only.
	TransferForcing(lagForcing [][]T, forces, torques [][]float64)
}

// NewBodyAccumulators allocates force and torque accumulators sized for a
// forcing grid, shape [3][dofs].
func NewBodyAccumulators[T grid.Real](fg ForcingGrid[T]) (forces, torques [][]float64) {
	forces = make([][]float64, 3)
	torques = make([][]float64, 3)
	for c := 0; c < 3; c++ {
		forces[c] = make([]float64, fg.ForceDOFs())
		torques[c] = make([]float64, fg.TorqueDOFs())
	}
	return forces, torques
}

func newMarkerField[T grid.Real](dim, markers int) [][]T {
	f := make([][]T, dim)
	for c := range f {
		f[c] = make([]T, markers)
	}
	return f
}
