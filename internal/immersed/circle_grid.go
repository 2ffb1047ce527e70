package immersed

import (
	"fmt"
	"math"

	"github.com/Ali-7800/SophT-Simulator/internal/grid"
)

// PlanarRigidBody is the read-only kinematic state a 2D rigid forcing grid
// samples: in-plane position and velocity, plus rotation about z.
type PlanarRigidBody interface {
	Center() (x, y float64)
	Angle() float64
	Velocity() (vx, vy float64)
	AngularVelocity() float64
}

// CircleEdgeGrid places markers evenly around the perimeter of a circular
// cross section, for 2D cylinder-type flows.
type CircleEdgeGrid[T grid.Real] struct {
	body   PlanarRigidBody
	radius float64
	alpha  []float64    // body-frame marker angles
	arm    [][2]float64 // world-frame moment arms, cached by the position pass

	pos [][]T
	vel [][]T
}

func NewCircleEdgeGrid[T grid.Real](body PlanarRigidBody, radius float64, numMarkers int) (*CircleEdgeGrid[T], error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: circle radius %g", ErrInvalidGeometry, radius)
	}
	if numMarkers < 3 {
		return nil, fmt.Errorf("%w: need at least 3 perimeter markers, got %d",
			ErrInvalidGeometry, numMarkers)
	}
	alpha := make([]float64, numMarkers)
	for m := range alpha {
		alpha[m] = 2 * math.Pi * float64(m) / float64(numMarkers)
	}
	return &CircleEdgeGrid[T]{
		body:   body,
		radius: radius,
		alpha:  alpha,
		arm:    make([][2]float64, numMarkers),
		pos:    newMarkerField[T](2, numMarkers),
		vel:    newMarkerField[T](2, numMarkers),
	}, nil
}

func (g *CircleEdgeGrid[T]) GridDim() int         { return 2 }
func (g *CircleEdgeGrid[T]) NumMarkers() int      { return len(g.alpha) }
func (g *CircleEdgeGrid[T]) PositionField() [][]T { return g.pos }
func (g *CircleEdgeGrid[T]) VelocityField() [][]T { return g.vel }
func (g *CircleEdgeGrid[T]) ForceDOFs() int       { return 1 }
func (g *CircleEdgeGrid[T]) TorqueDOFs() int      { return 1 }

func (g *CircleEdgeGrid[T]) UpdatePositionField() {
	cx, cy := g.body.Center()
	theta := g.body.Angle()
	for m, a := range g.alpha {
		rx := g.radius * math.Cos(a+theta)
		ry := g.radius * math.Sin(a+theta)
		g.arm[m] = [2]float64{rx, ry}
		g.pos[0][m] = T(cx + rx)
		g.pos[1][m] = T(cy + ry)
	}
}

func (g *CircleEdgeGrid[T]) UpdateVelocityField() {
	vx, vy := g.body.Velocity()
	omega := g.body.AngularVelocity()
	for m := range g.alpha {
		g.vel[0][m] = T(vx - omega*g.arm[m][1])
		g.vel[1][m] = T(vy + omega*g.arm[m][0])
	}
}

func (g *CircleEdgeGrid[T]) TransferForcing(lagForcing [][]T, forces, torques [][]float64) {
	var fx, fy, tz float64
	for m := range g.alpha {
		mfx := float64(lagForcing[0][m])
		mfy := float64(lagForcing[1][m])
		fx += mfx
		fy += mfy
		tz += g.arm[m][0]*mfy - g.arm[m][1]*mfx
	}
	forces[0][0], forces[1][0], forces[2][0] = fx, fy, 0
	torques[0][0], torques[1][0], torques[2][0] = 0, 0, tz
}
