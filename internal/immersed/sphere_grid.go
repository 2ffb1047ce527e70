package immersed

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Ali-7800/SophT-Simulator/internal/grid"
)

// RigidBody is the read-only kinematic state a rigid forcing grid samples.
// Angular velocity is expressed in the world frame.
type RigidBody interface {
	CenterOfMass() r3.Vec
	Orientation() r3.Rotation
	TranslationalVelocity() r3.Vec
	AngularVelocity() r3.Vec
}

// SphereSurfaceGrid places markers on latitude rings of a sphere surface.
// Ring spacing and per-ring point counts follow the equatorial resolution,
// so marker density is roughly uniform over the surface.
type SphereSurfaceGrid[T grid.Real] struct {
	body   RigidBody
	radius float64
	local  []r3.Vec // body-frame surface offsets, fixed at construction
	arm    []r3.Vec // world-frame moment arms, cached by the position pass

	pos [][]T
	vel [][]T
}

func NewSphereSurfaceGrid[T grid.Real](body RigidBody, radius float64, pointsAlongEquator int) (*SphereSurfaceGrid[T], error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: sphere radius %g", ErrInvalidGeometry, radius)
	}
	if pointsAlongEquator < 4 {
		return nil, fmt.Errorf("%w: need at least 4 forcing points along equator, got %d",
			ErrInvalidGeometry, pointsAlongEquator)
	}

	numLat := pointsAlongEquator / 2
	local := make([]r3.Vec, 0, pointsAlongEquator*numLat)
	for j := 0; j < numLat; j++ {
		polar := math.Pi * (float64(j) + 0.5) / float64(numLat)
		ring := int(math.Round(float64(pointsAlongEquator) * math.Sin(polar)))
		if ring < 1 {
			ring = 1
		}
		for i := 0; i < ring; i++ {
			azimuth := 2 * math.Pi * float64(i) / float64(ring)
			local = append(local, r3.Vec{
				X: radius * math.Sin(polar) * math.Cos(azimuth),
				Y: radius * math.Sin(polar) * math.Sin(azimuth),
				Z: radius * math.Cos(polar),
			})
		}
	}

	n := len(local)
	return &SphereSurfaceGrid[T]{
		body:   body,
		radius: radius,
		local:  local,
		arm:    make([]r3.Vec, n),
		pos:    newMarkerField[T](3, n),
		vel:    newMarkerField[T](3, n),
	}, nil
}

func (g *SphereSurfaceGrid[T]) GridDim() int         { return 3 }
func (g *SphereSurfaceGrid[T]) NumMarkers() int      { return len(g.local) }
func (g *SphereSurfaceGrid[T]) PositionField() [][]T { return g.pos }
func (g *SphereSurfaceGrid[T]) VelocityField() [][]T { return g.vel }
func (g *SphereSurfaceGrid[T]) ForceDOFs() int       { return 1 }
func (g *SphereSurfaceGrid[T]) TorqueDOFs() int      { return 1 }

func (g *SphereSurfaceGrid[T]) UpdatePositionField() {
	com := g.body.CenterOfMass()
	rot := g.body.Orientation()
	for m, l := range g.local {
		arm := rot.Rotate(l)
		g.arm[m] = arm
		p := r3.Add(com, arm)
		g.pos[0][m] = T(p.X)
		g.pos[1][m] = T(p.Y)
		g.pos[2][m] = T(p.Z)
	}
}

func (g *SphereSurfaceGrid[T]) UpdateVelocityField() {
	v := g.body.TranslationalVelocity()
	omega := g.body.AngularVelocity()
	for m := range g.local {
		u := r3.Add(v, r3.Cross(omega, g.arm[m]))
		g.vel[0][m] = T(u.X)
		g.vel[1][m] = T(u.Y)
		g.vel[2][m] = T(u.Z)
	}
}

func (g *SphereSurfaceGrid[T]) TransferForcing(lagForcing [][]T, forces, torques [][]float64) {
	var force, torque r3.Vec
	for m := range g.local {
		f := r3.Vec{
			X: float64(lagForcing[0][m]),
			Y: float64(lagForcing[1][m]),
			Z: float64(lagForcing[2][m]),
		}
		force = r3.Add(force, f)
		torque = r3.Add(torque, r3.Cross(g.arm[m], f))
	}
	forces[0][0], forces[1][0], forces[2][0] = force.X, force.Y, force.Z
	torques[0][0], torques[1][0], torques[2][0] = torque.X, torque.Y, torque.Z
}
