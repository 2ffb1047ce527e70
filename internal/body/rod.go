package body

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Rod is a flexible filament discretized as a chain of nodes. The demo
// cases drive it with prescribed motion; a structural integrator would
// update Nodes and NodeVels from the coupling forces instead.
type Rod struct {
	Nodes    []r3.Vec
	NodeVels []r3.Vec

	base   []r3.Vec // rest positions, kept for prescribed motion
	length float64
}

// NewRod builds a straight rod from start to end with numElements equal
// segments (numElements+1 nodes), initially at rest.
func NewRod(start, end r3.Vec, numElements int) *Rod {
	n := numElements + 1
	if n < 2 {
		n = 2
	}
	nodes := make([]r3.Vec, n)
	base := make([]r3.Vec, n)
	span := r3.Sub(end, start)
	for i := range nodes {
		s := float64(i) / float64(n-1)
		nodes[i] = r3.Add(start, r3.Scale(s, span))
		base[i] = nodes[i]
	}
	return &Rod{
		Nodes:    nodes,
		NodeVels: make([]r3.Vec, n),
		base:     base,
		length:   r3.Norm(span),
	}
}

func (r *Rod) NumNodes() int             { return len(r.Nodes) }
func (r *Rod) NodePosition(i int) r3.Vec { return r.Nodes[i] }
func (r *Rod) NodeVelocity(i int) r3.Vec { return r.NodeVels[i] }
func (r *Rod) Length() float64           { return r.length }

// Flap prescribes a transverse traveling-wave motion at time t: each node
// oscillates along y with amplitude growing from the clamped first node to
// the free end. Sets both positions and consistent velocities.
func (r *Rod) Flap(t, amplitude, frequency float64) {
	omega := 2 * math.Pi * frequency
	for i := range r.Nodes {
		s := float64(i) / float64(len(r.Nodes)-1)
		a := amplitude * s * s
		r.Nodes[i] = r.base[i]
		r.Nodes[i].Y += a * math.Sin(omega*t-2*math.Pi*s)
		r.NodeVels[i] = r3.Vec{Y: a * omega * math.Cos(omega*t-2*math.Pi*s)}
	}
}
