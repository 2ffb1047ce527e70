// Package flow provides the minimal fluid side of the demo cases: a
// uniform free stream whose velocity field consumes the Eulerian coupling
// forcing explicitly. It stands in for a Navier-Stokes solver, which this
// project does not include; the coupling engine only needs the two field
// references.
package flow

import (
	"fmt"
	"math"

	"github.com/Ali-7800/SophT-Simulator/internal/grid"
)

// Stream owns a velocity field initialized to a uniform free stream and a
// forcing field the coupling layer writes into.
type Stream[T grid.Real] struct {
	Velocity *grid.VectorField[T]
	Forcing  *grid.VectorField[T]

	freeStream []float64
}

func NewStream[T grid.Real](dom grid.Domain, freeStream []float64) (*Stream[T], error) {
	if len(freeStream) != dom.Dim {
		return nil, fmt.Errorf("flow: free stream has %d components for a %dD domain",
			len(freeStream), dom.Dim)
	}
	vel := grid.NewVectorField[T](dom)
	uniform := make([]T, dom.Dim)
	for c, u := range freeStream {
		uniform[c] = T(u)
	}
	vel.SetUniform(uniform...)
	fs := make([]float64, dom.Dim)
	copy(fs, freeStream)
	return &Stream[T]{
		Velocity:   vel,
		Forcing:    grid.NewVectorField[T](dom),
		freeStream: fs,
	}, nil
}

// TimeStep advances the velocity field by the accumulated forcing at unit
// density: u += dt*f.
func (s *Stream[T]) TimeStep(dt float64) {
	dtT := T(dt)
	for c := range s.Velocity.Data {
		vel := s.Velocity.Data[c]
		f := s.Forcing.Data[c]
		for i := range vel {
			vel[i] += dtT * f[i]
		}
	}
}

// FreeStreamSpeed is the magnitude of the far-field velocity.
func (s *Stream[T]) FreeStreamSpeed() float64 {
	var sum float64
	for _, u := range s.freeStream {
		sum += u * u
	}
	return math.Sqrt(sum)
}

// StableTimestep is an advective CFL bound prefac*dx/|U|.
func (s *Stream[T]) StableTimestep(prefac float64) float64 {
	speed := s.FreeStreamSpeed()
	if speed == 0 {
		speed = 1
	}
	return prefac * s.Velocity.Dom.DX / speed
}
