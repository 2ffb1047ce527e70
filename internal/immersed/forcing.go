package immersed

import (
	"fmt"
	"math"

	"github.com/Ali-7800/SophT-Simulator/internal/grid"
	"github.com/Ali-7800/SophT-Simulator/internal/interp"
)

const DefaultKernelWidth = 2

// Config holds the coupling parameters, fixed at construction. Stiffness
// and damping are the proportional-integral feedback gains of the penalty
// law and must be non-positive: positive values flip the restoring force
// into an energy-growing one, so they are rejected outright.
type Config struct {
	Stiffness float64
	Damping   float64

	// KernelWidth is the interpolation kernel half-width in grid cells
	// (DefaultKernelWidth when zero).
	KernelWidth int

	// NumThreads is the worker count for the marker-parallel transfer
	// loops (1 when zero).
	NumThreads int

	// ResetEulerianForcing zeroes the Eulerian forcing field before
	// spreading. Leave it off for every body after the first when several
	// bodies share one grid, so their contributions accumulate.
	ResetEulerianForcing bool
}

func (c Config) withDefaults() Config {
	if c.KernelWidth == 0 {
		c.KernelWidth = DefaultKernelWidth
	}
	if c.NumThreads == 0 {
		c.NumThreads = 1
	}
	return c
}

func (c Config) validate() error {
	for _, g := range [...]struct {
		name string
		val  float64
	}{{"stiffness", c.Stiffness}, {"damping", c.Damping}} {
		if math.IsNaN(g.val) || math.IsInf(g.val, 0) {
			return fmt.Errorf("%w: %s is %g", ErrConfiguration, g.name, g.val)
		}
		if g.val > 0 {
			return fmt.Errorf("%w: %s must be non-positive, got %g", ErrConfiguration, g.name, g.val)
		}
	}
	if c.KernelWidth < 1 {
		return fmt.Errorf("%w: kernel width must be positive, got %d", ErrConfiguration, c.KernelWidth)
	}
	if c.NumThreads < 1 {
		return fmt.Errorf("%w: thread count must be positive, got %d", ErrConfiguration, c.NumThreads)
	}
	return nil
}

// VirtualBoundaryForcing computes penalty forcing at a body's Lagrangian
// markers from the mismatch between marker and interpolated flow velocity.
//
// Per coupling step, TimeStep performs kinematics, interpolation and the
// forcing law (advancing the displacement-error integral by dt), and Apply
// spreads the reaction onto the Eulerian forcing field. The split lets
// callers run kinematics and spreading at different cadences in
// sub-stepping schemes; each must be called exactly once per step, in that
// order, or the integral drifts.
//
// Stability is not self-initiating: stiffness, damping and dt must be
// chosen jointly. Nothing here clamps or detects divergence; the
// orchestrating loop owns that. SuggestedTimestep gives an advisory bound.
type VirtualBoundaryForcing[T grid.Real] struct {
	dom   grid.Domain
	cfg   Config
	fgrid ForcingGrid[T]
	op    *interp.Operator[T]

	stiffness T
	damping   T

	flowVel    [][]T // interpolated flow velocity at markers
	mismatch   [][]T // marker velocity - flow velocity
	posErr     [][]T // time integral of the mismatch
	forcing    [][]T // penalty force on the body per marker
	negForcing [][]T // reaction spread onto the flow

	time float64
}

func NewVirtualBoundaryForcing[T grid.Real](dom grid.Domain, fg ForcingGrid[T], cfg Config) (*VirtualBoundaryForcing[T], error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if fg.GridDim() != dom.Dim {
		return nil, fmt.Errorf("%w: forcing grid is %dD but flow domain is %dD",
			ErrConfiguration, fg.GridDim(), dom.Dim)
	}
	if fg.NumMarkers() < 1 {
		return nil, fmt.Errorf("%w: forcing grid has no markers", ErrInvalidGeometry)
	}
	op, err := interp.NewOperator[T](dom, cfg.KernelWidth, cfg.NumThreads)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	n := fg.NumMarkers()
	return &VirtualBoundaryForcing[T]{
		dom:        dom,
		cfg:        cfg,
		fgrid:      fg,
		op:         op,
		stiffness:  T(cfg.Stiffness),
		damping:    T(cfg.Damping),
		flowVel:    newMarkerField[T](dom.Dim, n),
		mismatch:   newMarkerField[T](dom.Dim, n),
		posErr:     newMarkerField[T](dom.Dim, n),
		forcing:    newMarkerField[T](dom.Dim, n),
		negForcing: newMarkerField[T](dom.Dim, n),
	}, nil
}

// TimeStep recomputes marker kinematics from the body, interpolates the
// flow velocity field at the markers, evaluates the penalty law with the
// current displacement-error integral, and then advances the integral
// by dt. The returned error is fatal; the integral is not rolled back.
func (v *VirtualBoundaryForcing[T]) TimeStep(flowVelocity *grid.VectorField[T], dt float64) error {
	v.fgrid.UpdatePositionField()
	v.fgrid.UpdateVelocityField()

	if err := v.op.Interpolate(flowVelocity, v.fgrid.PositionField(), v.flowVel); err != nil {
		return err
	}

	markerVel := v.fgrid.VelocityField()
	dtT := T(dt)
	for c := 0; c < v.dom.Dim; c++ {
		for m := range v.mismatch[c] {
			dv := markerVel[c][m] - v.flowVel[c][m]
			v.mismatch[c][m] = dv
			v.forcing[c][m] = v.stiffness*v.posErr[c][m] + v.damping*dv
			v.posErr[c][m] += dv * dtT
		}
	}
	v.time += dt
	return nil
}

// Apply spreads the reaction to the marker forcing onto the Eulerian
// forcing field, optionally zeroing the field first.
func (v *VirtualBoundaryForcing[T]) Apply(flowForcing *grid.VectorField[T]) error {
	if v.cfg.ResetEulerianForcing {
		flowForcing.Zero()
	}
	for c := 0; c < v.dom.Dim; c++ {
		for m := range v.forcing[c] {
			v.negForcing[c][m] = -v.forcing[c][m]
		}
	}
	return v.op.Spread(v.negForcing, v.fgrid.PositionField(), flowForcing)
}

// Reduce overwrites the body accumulators with the marker forcing reduced
// to the body's degrees of freedom. Valid for one integration step.
func (v *VirtualBoundaryForcing[T]) Reduce(forces, torques [][]float64) {
	v.fgrid.TransferForcing(v.forcing, forces, torques)
}

// MarkerForcing exposes the per-marker penalty force on the body, shape
// [dim][markers], for diagnostics such as drag reduction.
func (v *VirtualBoundaryForcing[T]) MarkerForcing() [][]T { return v.forcing }

// FlowVelocityAtMarkers exposes the last interpolated flow velocities.
func (v *VirtualBoundaryForcing[T]) FlowVelocityAtMarkers() [][]T { return v.flowVel }

// Grid returns the forcing grid the engine drives.
func (v *VirtualBoundaryForcing[T]) Grid() ForcingGrid[T] { return v.fgrid }

// Time is the accumulated coupling time.
func (v *VirtualBoundaryForcing[T]) Time() float64 { return v.time }

// SuggestedTimestep is an advisory upper bound on dt from explicit-Euler
// linear stability of the per-marker feedback loop: dt < 2/|damping| for
// the velocity term and dt < 2/sqrt(|stiffness|) for the integral term.
// It is a guideline, not a guarantee; the transfer-operator gain tightens
// the true bound with grid resolution.
func (v *VirtualBoundaryForcing[T]) SuggestedTimestep(prefac float64) float64 {
	bound := math.Inf(1)
	if v.cfg.Damping != 0 {
		bound = 2 / math.Abs(v.cfg.Damping)
	}
	if v.cfg.Stiffness != 0 {
		bound = math.Min(bound, 2/math.Sqrt(math.Abs(v.cfg.Stiffness)))
	}
	return prefac * bound
}
