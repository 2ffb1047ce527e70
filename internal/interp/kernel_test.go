package interp

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/Ali-7800/SophT-Simulator/internal/grid"
)

func testDomain(t *testing.T, size []int, dx float64) grid.Domain {
	t.Helper()
	dom, err := grid.NewDomain(size, dx)
	if err != nil {
		t.Fatalf("NewDomain failed: %v", err)
	}
	return dom
}

// interiorMarkers places n markers uniformly inside the domain, away from
// the boundary by the kernel support width.
func interiorMarkers(dom grid.Domain, width, n int, rng *rand.Rand) [][]float64 {
	pos := make([][]float64, dom.Dim)
	margin := float64(width+1) * dom.DX
	for axis := range pos {
		pos[axis] = make([]float64, n)
		span := dom.Extent(axis) - 2*margin
		for m := 0; m < n; m++ {
			pos[axis][m] = margin + rng.Float64()*span
		}
	}
	return pos
}

func markerField(dim, n int) [][]float64 {
	f := make([][]float64, dim)
	for c := range f {
		f[c] = make([]float64, n)
	}
	return f
}

func TestPartitionOfUnity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tests := []struct {
		name  string
		size  []int
		width int
	}{
		{"2d width 1", []int{32, 32}, 1},
		{"2d width 2", []int{32, 32}, 2},
		{"3d width 2", []int{16, 16, 16}, 2},
		{"3d width 3", []int{16, 16, 16}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dom := testDomain(t, tt.size, 0.25)
			op, err := NewOperator[float64](dom, tt.width, 1)
			if err != nil {
				t.Fatalf("NewOperator failed: %v", err)
			}

			field := grid.NewVectorField[float64](dom)
			uniform := []float64{1.0, -2.5, 0.75}[:dom.Dim]
			field.SetUniform(uniform...)

			const n = 50
			pos := interiorMarkers(dom, tt.width, n, rng)
			out := markerField(dom.Dim, n)
			if err := op.Interpolate(field, pos, out); err != nil {
				t.Fatalf("Interpolate failed: %v", err)
			}
			// Weights summing to one means a uniform field interpolates
			// to itself at every marker.
			for c := 0; c < dom.Dim; c++ {
				for m := 0; m < n; m++ {
					if math.Abs(out[c][m]-uniform[c]) > 1e-12 {
						t.Fatalf("marker %d component %d: got %g, want %g",
							m, c, out[c][m], uniform[c])
					}
				}
			}
		})
	}
}

func TestSpreadConservesTotal(t *testing.T) {
	dom := testDomain(t, []int{16, 16, 16}, 0.25)
	op, err := NewOperator[float64](dom, 2, 1)
	if err != nil {
		t.Fatalf("NewOperator failed: %v", err)
	}

	pos := [][]float64{{1.93}, {2.11}, {1.27}}
	vals := [][]float64{{2.0}, {-1.0}, {0.5}}
	field := grid.NewVectorField[float64](dom)
	if err := op.Spread(vals, pos, field); err != nil {
		t.Fatalf("Spread failed: %v", err)
	}

	vol := dom.CellVolume()
	for c := 0; c < 3; c++ {
		var total float64
		for _, v := range field.Data[c] {
			total += v
		}
		total *= vol
		if math.Abs(total-vals[c][0]) > 1e-12 {
			t.Errorf("component %d: volume integral %g, want %g", c, total, vals[c][0])
		}
	}
}

func TestSpreadDeterministicAcrossWorkers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	dom := testDomain(t, []int{24, 24, 24}, 0.2)
	const n = 200
	pos := interiorMarkers(dom, 2, n, rng)
	vals := markerField(3, n)
	for c := range vals {
		for m := range vals[c] {
			vals[c][m] = rng.NormFloat64()
		}
	}

	serial, err := NewOperator[float64](dom, 2, 1)
	if err != nil {
		t.Fatalf("NewOperator failed: %v", err)
	}
	parallel, err := NewOperator[float64](dom, 2, 4)
	if err != nil {
		t.Fatalf("NewOperator failed: %v", err)
	}

	fieldSerial := grid.NewVectorField[float64](dom)
	fieldParallel := grid.NewVectorField[float64](dom)
	if err := serial.Spread(vals, pos, fieldSerial); err != nil {
		t.Fatalf("serial Spread failed: %v", err)
	}
	if err := parallel.Spread(vals, pos, fieldParallel); err != nil {
		t.Fatalf("parallel Spread failed: %v", err)
	}

	for c := range fieldSerial.Data {
		for i := range fieldSerial.Data[c] {
			diff := math.Abs(fieldSerial.Data[c][i] - fieldParallel.Data[c][i])
			if diff > 1e-10 {
				t.Fatalf("component %d cell %d differs by %g across worker counts", c, i, diff)
			}
		}
	}
}

func TestInterpolateParallelMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	dom := testDomain(t, []int{20, 20}, 0.1)
	field := grid.NewVectorField[float64](dom)
	for c := range field.Data {
		for i := range field.Data[c] {
			field.Data[c][i] = rng.NormFloat64()
		}
	}

	const n = 101
	pos := interiorMarkers(dom, 2, n, rng)
	serial, _ := NewOperator[float64](dom, 2, 1)
	parallel, _ := NewOperator[float64](dom, 2, 3)

	outSerial := markerField(2, n)
	outParallel := markerField(2, n)
	if err := serial.Interpolate(field, pos, outSerial); err != nil {
		t.Fatalf("serial Interpolate failed: %v", err)
	}
	if err := parallel.Interpolate(field, pos, outParallel); err != nil {
		t.Fatalf("parallel Interpolate failed: %v", err)
	}
	for c := range outSerial {
		for m := range outSerial[c] {
			if outSerial[c][m] != outParallel[c][m] {
				t.Fatalf("marker %d component %d differs across worker counts", m, c)
			}
		}
	}
}

func TestOutOfDomain(t *testing.T) {
	dom := testDomain(t, []int{16, 16}, 0.25)
	op, _ := NewOperator[float64](dom, 2, 1)
	field := grid.NewVectorField[float64](dom)

	tests := []struct {
		name string
		pos  [][]float64
	}{
		{"near low x edge", [][]float64{{0.1}, {2.0}}},
		{"near high y edge", [][]float64{{2.0}, {3.95}}},
		{"outside", [][]float64{{-1.0}, {2.0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := markerField(2, 1)
			err := op.Interpolate(field, tt.pos, out)
			if !errors.Is(err, ErrOutOfDomain) {
				t.Fatalf("expected ErrOutOfDomain, got %v", err)
			}
			var oob *OutOfDomainError
			if !errors.As(err, &oob) {
				t.Fatal("expected *OutOfDomainError")
			}
			if oob.Marker != 0 {
				t.Errorf("expected marker 0, got %d", oob.Marker)
			}

			vals := [][]float64{{1.0}, {1.0}}
			if err := op.Spread(vals, tt.pos, field); !errors.Is(err, ErrOutOfDomain) {
				t.Fatalf("expected spread ErrOutOfDomain, got %v", err)
			}
		})
	}
}

func TestOperatorValidation(t *testing.T) {
	dom := testDomain(t, []int{16, 16}, 0.25)
	if _, err := NewOperator[float64](dom, 0, 1); err == nil {
		t.Error("expected error for zero kernel width")
	}
	if _, err := NewOperator[float64](dom, 2, 0); err == nil {
		t.Error("expected error for zero workers")
	}
	// Support wider than the grid itself.
	if _, err := NewOperator[float64](dom, 9, 1); err == nil {
		t.Error("expected error for oversized kernel support")
	}
}

func TestSinglePrecisionInterpolate(t *testing.T) {
	dom := testDomain(t, []int{16, 16}, 0.25)
	op, err := NewOperator[float32](dom, 2, 1)
	if err != nil {
		t.Fatalf("NewOperator failed: %v", err)
	}
	field := grid.NewVectorField[float32](dom)
	field.SetUniform(1.0, 2.0)

	pos := [][]float32{{2.0}, {2.0}}
	out := [][]float32{{0}, {0}}
	if err := op.Interpolate(field, pos, out); err != nil {
		t.Fatalf("Interpolate failed: %v", err)
	}
	if math.Abs(float64(out[0][0])-1.0) > 1e-5 || math.Abs(float64(out[1][0])-2.0) > 1e-5 {
		t.Errorf("got (%g, %g), want (1, 2)", out[0][0], out[1][0])
	}
}
