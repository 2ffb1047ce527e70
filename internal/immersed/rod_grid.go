package immersed

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Ali-7800/SophT-Simulator/internal/grid"
)

// FlexibleRod is the read-only kinematic state an element-centric rod
// forcing grid samples: a chain of nodes with positions and velocities.
type FlexibleRod interface {
	NumNodes() int
	NodePosition(i int) r3.Vec
	NodeVelocity(i int) r3.Vec
}

// RodElementGrid places one marker per rod element, at the midpoint of the
// element's two nodes. Reduction splits each marker force evenly between
// the adjacent nodes; element torques are zero since the marker sits at
// the element centroid.
type RodElementGrid[T grid.Real] struct {
	rod     FlexibleRod
	gridDim int
	elems   int

	pos [][]T
	vel [][]T
}

func NewRodElementGrid[T grid.Real](rod FlexibleRod, gridDim int) (*RodElementGrid[T], error) {
	if gridDim != 2 && gridDim != 3 {
		return nil, fmt.Errorf("%w: rod grid dimension must be 2 or 3, got %d",
			ErrInvalidGeometry, gridDim)
	}
	elems := rod.NumNodes() - 1
	if elems < 1 {
		return nil, fmt.Errorf("%w: rod with %d nodes has no elements",
			ErrInvalidGeometry, rod.NumNodes())
	}
	return &RodElementGrid[T]{
		rod:     rod,
		gridDim: gridDim,
		elems:   elems,
		pos:     newMarkerField[T](gridDim, elems),
		vel:     newMarkerField[T](gridDim, elems),
	}, nil
}

func (g *RodElementGrid[T]) GridDim() int         { return g.gridDim }
func (g *RodElementGrid[T]) NumMarkers() int      { return g.elems }
func (g *RodElementGrid[T]) PositionField() [][]T { return g.pos }
func (g *RodElementGrid[T]) VelocityField() [][]T { return g.vel }
func (g *RodElementGrid[T]) ForceDOFs() int       { return g.rod.NumNodes() }
func (g *RodElementGrid[T]) TorqueDOFs() int      { return g.elems }

func (g *RodElementGrid[T]) UpdatePositionField() {
	for e := 0; e < g.elems; e++ {
		mid := r3.Scale(0.5, r3.Add(g.rod.NodePosition(e), g.rod.NodePosition(e+1)))
		g.store(g.pos, e, mid)
	}
}

func (g *RodElementGrid[T]) UpdateVelocityField() {
	for e := 0; e < g.elems; e++ {
		mid := r3.Scale(0.5, r3.Add(g.rod.NodeVelocity(e), g.rod.NodeVelocity(e+1)))
		g.store(g.vel, e, mid)
	}
}

func (g *RodElementGrid[T]) store(field [][]T, e int, v r3.Vec) {
	field[0][e] = T(v.X)
	field[1][e] = T(v.Y)
	if g.gridDim == 3 {
		field[2][e] = T(v.Z)
	}
}

func (g *RodElementGrid[T]) TransferForcing(lagForcing [][]T, forces, torques [][]float64) {
	for c := range forces {
		clear(forces[c])
		clear(torques[c])
	}
	for e := 0; e < g.elems; e++ {
		for c := 0; c < g.gridDim; c++ {
			half := 0.5 * float64(lagForcing[c][e])
			forces[c][e] += half
			forces[c][e+1] += half
		}
	}
}
