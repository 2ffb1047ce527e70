package immersed

import (
	"fmt"

	"github.com/Ali-7800/SophT-Simulator/internal/grid"
)

// FlowInteraction couples one body to a flow solver's velocity and forcing
// fields. It holds non-owning references to both fields, reading velocity
// during TimeStep and writing forcing during Apply, and owns the body-level
// force and torque accumulators the body integrator consumes.
//
// The per-step contract is TimeStep(dt) followed by Apply(), each exactly
// once. After Apply, BodyForces and BodyTorques hold the reduced coupling
// loads for this step; they are overwritten on the next Apply.
type FlowInteraction[T grid.Real] struct {
	Forcing *VirtualBoundaryForcing[T]

	// BodyForces and BodyTorques are shaped [3][dofs] as sized by the
	// forcing grid's degrees of freedom.
	BodyForces  [][]float64
	BodyTorques [][]float64

	flowVelocity *grid.VectorField[T]
	flowForcing  *grid.VectorField[T]
}

func NewFlowInteraction[T grid.Real](flowVelocity, flowForcing *grid.VectorField[T], fg ForcingGrid[T], cfg Config) (*FlowInteraction[T], error) {
	if !flowVelocity.Dom.SameAs(flowForcing.Dom) {
		return nil, fmt.Errorf("%w: velocity and forcing fields live on different grids", ErrConfiguration)
	}
	engine, err := NewVirtualBoundaryForcing(flowVelocity.Dom, fg, cfg)
	if err != nil {
		return nil, err
	}
	forces, torques := NewBodyAccumulators(fg)
	return &FlowInteraction[T]{
		Forcing:      engine,
		BodyForces:   forces,
		BodyTorques:  torques,
		flowVelocity: flowVelocity,
		flowForcing:  flowForcing,
	}, nil
}

// TimeStep advances marker kinematics and the penalty forcing law.
func (fi *FlowInteraction[T]) TimeStep(dt float64) error {
	return fi.Forcing.TimeStep(fi.flowVelocity, dt)
}

// Apply spreads the coupling forcing onto the flow forcing field and
// reduces it into the body accumulators.
func (fi *FlowInteraction[T]) Apply() error {
	if err := fi.Forcing.Apply(fi.flowForcing); err != nil {
		return err
	}
	fi.Forcing.Reduce(fi.BodyForces, fi.BodyTorques)
	return nil
}

// MarkerPositions exposes the marker position field for diagnostics and IO.
func (fi *FlowInteraction[T]) MarkerPositions() [][]T {
	return fi.Forcing.Grid().PositionField()
}

// MarkerForcing exposes the per-marker force on the body.
func (fi *FlowInteraction[T]) MarkerForcing() [][]T {
	return fi.Forcing.MarkerForcing()
}
