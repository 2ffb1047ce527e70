package grid

import "fmt"

// Real is the floating point precision the coupling core is instantiated
// with. Single precision halves memory traffic on large grids; double is
// the default for validation runs.
type Real interface {
	~float32 | ~float64
}

// Domain describes a uniform, isotropic structured grid. Size is the number
// of cells per dimension, x first. Cell centers sit at CoordShift + i*DX
// along each axis.
type Domain struct {
	Dim        int
	Size       []int
	DX         float64
	CoordShift float64
}

func NewDomain(size []int, dx float64) (Domain, error) {
	if len(size) != 2 && len(size) != 3 {
		return Domain{}, fmt.Errorf("grid: dimension must be 2 or 3, got %d", len(size))
	}
	if dx <= 0 {
		return Domain{}, fmt.Errorf("grid: dx must be positive, got %g", dx)
	}
	for axis, n := range size {
		if n < 1 {
			return Domain{}, fmt.Errorf("grid: size[%d] must be positive, got %d", axis, n)
		}
	}
	s := make([]int, len(size))
	copy(s, size)
	return Domain{
		Dim:        len(size),
		Size:       s,
		DX:         dx,
		CoordShift: 0.5 * dx,
	}, nil
}

// WithCoordShift overrides the default cell-center offset, for staggered
// grid layouts.
func (d Domain) WithCoordShift(shift float64) Domain {
	d.CoordShift = shift
	return d
}

// Cells is the total cell count.
func (d Domain) Cells() int {
	n := 1
	for _, s := range d.Size {
		n *= s
	}
	return n
}

// Extent is the physical length of the domain along axis.
func (d Domain) Extent(axis int) float64 {
	return float64(d.Size[axis]) * d.DX
}

// CellVolume is dx^dim.
func (d Domain) CellVolume() float64 {
	v := 1.0
	for i := 0; i < d.Dim; i++ {
		v *= d.DX
	}
	return v
}

// Index flattens per-axis cell indices, x fastest.
func (d Domain) Index(idx ...int) int {
	flat := 0
	for axis := d.Dim - 1; axis >= 0; axis-- {
		flat = flat*d.Size[axis] + idx[axis]
	}
	return flat
}

// SameAs reports whether two domains describe the same grid.
func (d Domain) SameAs(o Domain) bool {
	if d.Dim != o.Dim || d.DX != o.DX || d.CoordShift != o.CoordShift {
		return false
	}
	for axis := range d.Size {
		if d.Size[axis] != o.Size[axis] {
			return false
		}
	}
	return true
}

// VectorField is a dense vector-valued field on a Domain, one flattened
// component slice per spatial dimension.
type VectorField[T Real] struct {
	Dom  Domain
	Data [][]T
}

func NewVectorField[T Real](dom Domain) *VectorField[T] {
	data := make([][]T, dom.Dim)
	for c := range data {
		data[c] = make([]T, dom.Cells())
	}
	return &VectorField[T]{Dom: dom, Data: data}
}

// Zero clears all components.
func (f *VectorField[T]) Zero() {
	for c := range f.Data {
		clear(f.Data[c])
	}
}

// SetUniform fills every cell of each component with the given value.
func (f *VectorField[T]) SetUniform(vals ...T) {
	for c := range f.Data {
		var v T
		if c < len(vals) {
			v = vals[c]
		}
		for i := range f.Data[c] {
			f.Data[c][i] = v
		}
	}
}

// At reads component c at the given per-axis cell indices. Convenience for
// tests and diagnostics; hot loops index Data directly.
func (f *VectorField[T]) At(c int, idx ...int) T {
	return f.Data[c][f.Dom.Index(idx...)]
}
