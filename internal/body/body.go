// Package body provides the simple rigid and flexible bodies the demo
// cases immerse in the flow. Bodies own their kinematic state; the
// coupling layer only reads it.
package body

import "gonum.org/v1/gonum/spatial/r3"

// Sphere is a rigid sphere with free translational and rotational state.
type Sphere struct {
	Center  r3.Vec
	Radius  float64
	Density float64

	Rot   r3.Rotation
	Vel   r3.Vec
	Omega r3.Vec
}

func NewSphere(center r3.Vec, radius, density float64) *Sphere {
	return &Sphere{
		Center:  center,
		Radius:  radius,
		Density: density,
		Rot:     r3.NewRotation(0, r3.Vec{Z: 1}),
	}
}

func (s *Sphere) CenterOfMass() r3.Vec          { return s.Center }
func (s *Sphere) Orientation() r3.Rotation      { return s.Rot }
func (s *Sphere) TranslationalVelocity() r3.Vec { return s.Vel }
func (s *Sphere) AngularVelocity() r3.Vec       { return s.Omega }

// Disk is a rigid circular cross section for planar flows.
type Disk struct {
	X, Y    float64
	Radius  float64
	Density float64

	Theta  float64
	VX, VY float64
	OmegaZ float64
}

func NewDisk(x, y, radius, density float64) *Disk {
	return &Disk{X: x, Y: y, Radius: radius, Density: density}
}

func (d *Disk) Center() (float64, float64)   { return d.X, d.Y }
func (d *Disk) Angle() float64               { return d.Theta }
func (d *Disk) Velocity() (float64, float64) { return d.VX, d.VY }
func (d *Disk) AngularVelocity() float64     { return d.OmegaZ }
