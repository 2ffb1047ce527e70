// Package interp transfers vector fields between an Eulerian grid and
// Lagrangian marker points using a compactly supported cosine delta kernel.
// The same weights serve both directions, so interpolation and spreading
// are discrete adjoints of each other and transferring a forcing across
// the pair conserves momentum.
package interp

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Ali-7800/SophT-Simulator/internal/grid"
)

// ErrOutOfDomain indicates a marker whose kernel support extends past the
// allocated grid. The support is never clamped; callers treat this as the
// body leaving the simulated domain.
var ErrOutOfDomain = errors.New("interp: marker kernel support outside grid")

// OutOfDomainError carries the offending marker and axis.
type OutOfDomainError struct {
	Marker   int
	Axis     int
	Position float64
}

func (e *OutOfDomainError) Error() string {
	return fmt.Sprintf("interp: marker %d kernel support outside grid (axis %d, position %g)",
		e.Marker, e.Axis, e.Position)
}

func (e *OutOfDomainError) Unwrap() error { return ErrOutOfDomain }

// Operator interpolates grid values to markers and spreads marker values
// back onto the grid, over a support of width cells on each side of a
// marker. Loops are chunked over markers across a fixed worker count;
// spreading accumulates into per-worker buffers that are reduced in worker
// order, so results do not depend on scheduling.
type Operator[T grid.Real] struct {
	dom     grid.Domain
	width   int
	workers int

	mu      sync.Mutex
	scratch [][][]T // [worker][component][cell], lazily allocated
}

func NewOperator[T grid.Real](dom grid.Domain, width, workers int) (*Operator[T], error) {
	if width < 1 {
		return nil, fmt.Errorf("interp: kernel width must be positive, got %d", width)
	}
	if workers < 1 {
		return nil, fmt.Errorf("interp: workers must be positive, got %d", workers)
	}
	support := 2 * width
	for axis := 0; axis < dom.Dim; axis++ {
		if dom.Size[axis] < support {
			return nil, fmt.Errorf("interp: grid size %d along axis %d cannot hold kernel support %d",
				dom.Size[axis], axis, support)
		}
	}
	return &Operator[T]{dom: dom, width: width, workers: workers}, nil
}

func (op *Operator[T]) Width() int { return op.width }

// support locates the first support cell along each axis and fills the
// per-axis weights for one marker. Weights along an axis sum to one
// exactly for the cosine kernel, which is what makes interpolation of a
// constant field exact.
func (op *Operator[T]) support(m int, pos [][]T, i0 []int, wts [][]float64) error {
	w := op.width
	invDX := 1.0 / op.dom.DX
	shift := op.dom.CoordShift * invDX
	for axis := 0; axis < op.dom.Dim; axis++ {
		x := float64(pos[axis][m])
		t := x*invDX - shift
		start := int(math.Floor(t)) - w + 1
		if start < 0 || start+2*w-1 >= op.dom.Size[axis] {
			return &OutOfDomainError{Marker: m, Axis: axis, Position: x}
		}
		i0[axis] = start
		for c := 0; c < 2*w; c++ {
			r := t - float64(start+c)
			wts[axis][c] = (1 + math.Cos(math.Pi*r/float64(w))) / (2 * float64(w))
		}
	}
	return nil
}

// Interpolate samples field at every marker position, writing one vector
// per marker into out (shape [dim][markers]).
func (op *Operator[T]) Interpolate(field *grid.VectorField[T], pos [][]T, out [][]T) error {
	n := len(pos[0])
	return op.parallel(n, func(lo, hi int) error {
		i0 := make([]int, op.dom.Dim)
		wts := makeWeights(op.dom.Dim, op.width)
		for m := lo; m < hi; m++ {
			if err := op.support(m, pos, i0, wts); err != nil {
				return err
			}
			op.gather(field.Data, i0, wts, out, m)
		}
		return nil
	})
}

// Spread adds vals[c][m] * weight / dx^dim into every support cell of each
// marker. Contributions from overlapping markers accumulate; the field is
// not cleared here.
func (op *Operator[T]) Spread(vals [][]T, pos [][]T, field *grid.VectorField[T]) error {
	n := len(pos[0])
	if op.workers == 1 {
		i0 := make([]int, op.dom.Dim)
		wts := makeWeights(op.dom.Dim, op.width)
		for m := 0; m < n; m++ {
			if err := op.support(m, pos, i0, wts); err != nil {
				return err
			}
			op.scatter(field.Data, i0, wts, vals, m)
		}
		return nil
	}

	bufs := op.spreadBuffers()
	chunk := (n + op.workers - 1) / op.workers
	errs := make([]error, op.workers)
	var wg sync.WaitGroup
	for w := 0; w < op.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			lo := worker * chunk
			hi := min(lo+chunk, n)
			if lo >= hi {
				return
			}
			buf := bufs[worker]
			for c := range buf {
				clear(buf[c])
			}
			i0 := make([]int, op.dom.Dim)
			wts := makeWeights(op.dom.Dim, op.width)
			for m := lo; m < hi; m++ {
				if err := op.support(m, pos, i0, wts); err != nil {
					errs[worker] = err
					return
				}
				op.scatter(buf, i0, wts, vals, m)
			}
		}(w)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	// Reduce in worker order so the summation order is fixed.
	for w := 0; w < op.workers; w++ {
		for c := range field.Data {
			dst := field.Data[c]
			src := bufs[w][c]
			for i := range dst {
				dst[i] += src[i]
			}
		}
	}
	return nil
}

func (op *Operator[T]) gather(data [][]T, i0 []int, wts [][]float64, out [][]T, m int) {
	w2 := 2 * op.width
	nx := op.dom.Size[0]
	if op.dom.Dim == 2 {
		for c := range data {
			var sum T
			for j := 0; j < w2; j++ {
				row := (i0[1]+j)*nx + i0[0]
				var rowSum T
				for i := 0; i < w2; i++ {
					rowSum += data[c][row+i] * T(wts[0][i])
				}
				sum += rowSum * T(wts[1][j])
			}
			out[c][m] = sum
		}
		return
	}
	ny := op.dom.Size[1]
	for c := range data {
		var sum T
		for k := 0; k < w2; k++ {
			for j := 0; j < w2; j++ {
				row := ((i0[2]+k)*ny+i0[1]+j)*nx + i0[0]
				var rowSum T
				for i := 0; i < w2; i++ {
					rowSum += data[c][row+i] * T(wts[0][i])
				}
				sum += rowSum * T(wts[1][j]*wts[2][k])
			}
		}
		out[c][m] = sum
	}
}

func (op *Operator[T]) scatter(data [][]T, i0 []int, wts [][]float64, vals [][]T, m int) {
	w2 := 2 * op.width
	nx := op.dom.Size[0]
	invVol := 1.0 / op.dom.CellVolume()
	if op.dom.Dim == 2 {
		for c := range data {
			v := float64(vals[c][m]) * invVol
			for j := 0; j < w2; j++ {
				row := (i0[1]+j)*nx + i0[0]
				vj := v * wts[1][j]
				for i := 0; i < w2; i++ {
					data[c][row+i] += T(vj * wts[0][i])
				}
			}
		}
		return
	}
	ny := op.dom.Size[1]
	for c := range data {
		v := float64(vals[c][m]) * invVol
		for k := 0; k < w2; k++ {
			for j := 0; j < w2; j++ {
				row := ((i0[2]+k)*ny+i0[1]+j)*nx + i0[0]
				vjk := v * wts[1][j] * wts[2][k]
				for i := 0; i < w2; i++ {
					data[c][row+i] += T(vjk * wts[0][i])
				}
			}
		}
	}
}

// parallel runs fn over marker chunks and returns the first worker error.
func (op *Operator[T]) parallel(n int, fn func(lo, hi int) error) error {
	if op.workers == 1 {
		return fn(0, n)
	}
	chunk := (n + op.workers - 1) / op.workers
	errs := make([]error, op.workers)
	var wg sync.WaitGroup
	for w := 0; w < op.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			lo := worker * chunk
			hi := min(lo+chunk, n)
			if lo < hi {
				errs[worker] = fn(lo, hi)
			}
		}(w)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (op *Operator[T]) spreadBuffers() [][][]T {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.scratch == nil {
		op.scratch = make([][][]T, op.workers)
		for w := range op.scratch {
			op.scratch[w] = make([][]T, op.dom.Dim)
			for c := range op.scratch[w] {
				op.scratch[w][c] = make([]T, op.dom.Cells())
			}
		}
	}
	return op.scratch
}

func makeWeights(dim, width int) [][]float64 {
	wts := make([][]float64, dim)
	for axis := range wts {
		wts[axis] = make([]float64, 2*width)
	}
	return wts
}
