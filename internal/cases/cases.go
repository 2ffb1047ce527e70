// Package cases assembles the runnable demo cases from a configuration:
// domain, free-stream flow, immersed body, forcing grid and coupling
// engine. The same assembly backs the CLI run loop and the live monitor.
package cases

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Ali-7800/SophT-Simulator/internal/body"
	"github.com/Ali-7800/SophT-Simulator/internal/config"
	"github.com/Ali-7800/SophT-Simulator/internal/diagnostics"
	"github.com/Ali-7800/SophT-Simulator/internal/flow"
	"github.com/Ali-7800/SophT-Simulator/internal/grid"
	"github.com/Ali-7800/SophT-Simulator/internal/immersed"
)

// Case is one assembled coupling scenario stepped at a fixed dt.
type Case[T grid.Real] struct {
	Name        string
	Stream      *flow.Stream[T]
	Interaction *immersed.FlowInteraction[T]

	// Timescale is the body flow timescale D/U; case duration is given
	// in multiples of it.
	Timescale float64
	EndTime   float64

	dt        float64
	dragScale float64
	axis      int
	motion    func(t float64)
	time      float64
}

// Build assembles the case named by cfg. The flow domain spans a unit
// length along x; everything else is sized from the grid.
func Build[T grid.Real](cfg *config.Config) (*Case[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Case {
	case "sphere3d":
		return buildSphere[T](cfg)
	case "disk2d":
		return buildDisk[T](cfg)
	case "rod2d":
		return buildRod[T](cfg)
	}
	return nil, fmt.Errorf("cases: unknown case %q", cfg.Case)
}

func buildDomain(cfg *config.Config) (grid.Domain, error) {
	dx := 1.0 / float64(cfg.GridSize[0])
	return grid.NewDomain(cfg.GridSize, dx)
}

// crossExtent is the shortest domain extent normal to the stream.
func crossExtent(dom grid.Domain) float64 {
	ext := dom.Extent(1)
	if dom.Dim == 3 {
		ext = math.Min(ext, dom.Extent(2))
	}
	return ext
}

func couplingConfig(cfg *config.Config) immersed.Config {
	return immersed.Config{
		Stiffness:            cfg.Stiffness,
		Damping:              cfg.Damping,
		KernelWidth:          cfg.KernelWidth,
		NumThreads:           cfg.NumThreads,
		ResetEulerianForcing: cfg.ResetForcing,
	}
}

func buildSphere[T grid.Real](cfg *config.Config) (*Case[T], error) {
	dom, err := buildDomain(cfg)
	if err != nil {
		return nil, err
	}
	diameter := cfg.DiameterFraction * crossExtent(dom)
	sphere := body.NewSphere(r3.Vec{
		X: 0.25 * dom.Extent(0),
		Y: 0.5 * dom.Extent(1),
		Z: 0.5 * dom.Extent(2),
	}, diameter/2, 1e3)

	fg, err := immersed.NewSphereSurfaceGrid[T](sphere, sphere.Radius, cfg.EquatorPoints)
	if err != nil {
		return nil, err
	}
	projected := 0.25 * math.Pi * diameter * diameter
	return assemble[T](cfg, dom, fg, diameter, projected, nil)
}

func buildDisk[T grid.Real](cfg *config.Config) (*Case[T], error) {
	dom, err := buildDomain(cfg)
	if err != nil {
		return nil, err
	}
	diameter := cfg.DiameterFraction * crossExtent(dom)
	disk := body.NewDisk(0.25*dom.Extent(0), 0.5*dom.Extent(1), diameter/2, 1e3)

	fg, err := immersed.NewCircleEdgeGrid[T](disk, disk.Radius, cfg.PerimeterPoints)
	if err != nil {
		return nil, err
	}
	// Reference area per unit span.
	return assemble[T](cfg, dom, fg, diameter, diameter, nil)
}

func buildRod[T grid.Real](cfg *config.Config) (*Case[T], error) {
	dom, err := buildDomain(cfg)
	if err != nil {
		return nil, err
	}
	// Streamwise rod clamped at its leading node, flapping transversely.
	length := cfg.DiameterFraction * crossExtent(dom)
	x0 := 0.25 * dom.Extent(0)
	y := 0.5 * dom.Extent(1)
	rod := body.NewRod(r3.Vec{X: x0, Y: y}, r3.Vec{X: x0 + length, Y: y}, cfg.RodElements)

	fg, err := immersed.NewRodElementGrid[T](rod, 2)
	if err != nil {
		return nil, err
	}
	flapFreq := cfg.FreeStream / length
	motion := func(t float64) { rod.Flap(t, 0.1*length, flapFreq) }
	motion(0)
	return assemble[T](cfg, dom, fg, length, length, motion)
}

func assemble[T grid.Real](cfg *config.Config, dom grid.Domain, fg immersed.ForcingGrid[T], lengthScale, refArea float64, motion func(float64)) (*Case[T], error) {
	freeStream := make([]float64, dom.Dim)
	freeStream[0] = cfg.FreeStream
	stream, err := flow.NewStream[T](dom, freeStream)
	if err != nil {
		return nil, err
	}
	interaction, err := immersed.NewFlowInteraction(stream.Velocity, stream.Forcing, fg, couplingConfig(cfg))
	if err != nil {
		return nil, err
	}

	timescale := lengthScale / cfg.FreeStream
	dt := math.Min(
		stream.StableTimestep(cfg.DtPrefactor),
		interaction.Forcing.SuggestedTimestep(cfg.DtPrefactor),
	)
	return &Case[T]{
		Name:        cfg.Case,
		Stream:      stream,
		Interaction: interaction,
		Timescale:   timescale,
		EndTime:     cfg.Duration * timescale,
		dt:          dt,
		dragScale:   diagnostics.DragScale(cfg.Density, cfg.FreeStream, refArea),
		axis:        0,
		motion:      motion,
	}, nil
}

// Step advances one coupling step: prescribed body motion, penalty
// forcing, spreading onto the flow, then the flow update.
func (c *Case[T]) Step() error {
	if c.motion != nil {
		c.motion(c.time)
	}
	if err := c.Interaction.TimeStep(c.dt); err != nil {
		return err
	}
	if err := c.Interaction.Apply(); err != nil {
		return err
	}
	c.Stream.TimeStep(c.dt)
	c.time += c.dt
	return nil
}

func (c *Case[T]) Time() float64 { return c.time }
func (c *Case[T]) Dt() float64   { return c.dt }
func (c *Case[T]) Done() bool    { return c.time >= c.EndTime }

// Drag is the current drag coefficient from the marker forcing.
func (c *Case[T]) Drag() float64 {
	force := diagnostics.StreamwiseForce(c.Interaction.MarkerForcing(), c.axis)
	return diagnostics.DragCoefficient(force, c.dragScale)
}

// NumMarkers is the marker count of the forcing grid.
func (c *Case[T]) NumMarkers() int {
	return c.Interaction.Forcing.Grid().NumMarkers()
}
