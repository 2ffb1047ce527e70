package immersed

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Ali-7800/SophT-Simulator/internal/flow"
	"github.com/Ali-7800/SophT-Simulator/internal/grid"
	"github.com/Ali-7800/SophT-Simulator/internal/interp"
)

// pointGrid is a minimal forcing grid with directly assignable marker
// state, standing in for a body discretization.
type pointGrid struct {
	dim      int
	pos, vel [][]float64
}

func newPointGrid(dim, markers int) *pointGrid {
	return &pointGrid{
		dim: dim,
		pos: newMarkerField[float64](dim, markers),
		vel: newMarkerField[float64](dim, markers),
	}
}

func (g *pointGrid) GridDim() int               { return g.dim }
func (g *pointGrid) NumMarkers() int            { return len(g.pos[0]) }
func (g *pointGrid) PositionField() [][]float64 { return g.pos }
func (g *pointGrid) VelocityField() [][]float64 { return g.vel }
func (g *pointGrid) UpdatePositionField()       {}
func (g *pointGrid) UpdateVelocityField()       {}
func (g *pointGrid) ForceDOFs() int             { return 1 }
func (g *pointGrid) TorqueDOFs() int            { return 1 }

func (g *pointGrid) TransferForcing(lagForcing [][]float64, forces, torques [][]float64) {
	for c := range forces {
		clear(forces[c])
		clear(torques[c])
	}
	for c := 0; c < g.dim; c++ {
		for m := range lagForcing[c] {
			forces[c][0] += lagForcing[c][m]
		}
	}
}

func mustDomain(size []int, dx float64) grid.Domain {
	dom, err := grid.NewDomain(size, dx)
	Expect(err).NotTo(HaveOccurred())
	return dom
}

var _ = Describe("VirtualBoundaryForcing", func() {
	var dom grid.Domain

	BeforeEach(func() {
		dom = mustDomain([]int{16, 16, 16}, 0.25)
	})

	Describe("construction", func() {
		It("rejects a positive stiffness", func() {
			fg := newPointGrid(3, 1)
			_, err := NewVirtualBoundaryForcing(dom, ForcingGrid[float64](fg), Config{Stiffness: 1, Damping: -1})
			Expect(err).To(MatchError(ErrConfiguration))
		})

		It("rejects a positive damping", func() {
			fg := newPointGrid(3, 1)
			_, err := NewVirtualBoundaryForcing(dom, ForcingGrid[float64](fg), Config{Stiffness: -1, Damping: 1})
			Expect(err).To(MatchError(ErrConfiguration))
		})

		It("rejects non-finite gains", func() {
			fg := newPointGrid(3, 1)
			_, err := NewVirtualBoundaryForcing(dom, ForcingGrid[float64](fg), Config{Stiffness: math.NaN(), Damping: -1})
			Expect(err).To(MatchError(ErrConfiguration))
		})

		It("rejects a negative kernel width", func() {
			fg := newPointGrid(3, 1)
			_, err := NewVirtualBoundaryForcing(dom, ForcingGrid[float64](fg),
				Config{Stiffness: -1, Damping: -1, KernelWidth: -2})
			Expect(err).To(MatchError(ErrConfiguration))
		})

		It("rejects a grid dimension mismatch", func() {
			fg := newPointGrid(2, 1)
			_, err := NewVirtualBoundaryForcing(dom, ForcingGrid[float64](fg), Config{Stiffness: -1, Damping: -1})
			Expect(err).To(MatchError(ErrConfiguration))
		})

		It("accepts zero gains and defaults kernel width and threads", func() {
			fg := newPointGrid(3, 1)
			fg.pos[0][0], fg.pos[1][0], fg.pos[2][0] = 2, 2, 2
			v, err := NewVirtualBoundaryForcing(dom, ForcingGrid[float64](fg), Config{})
			Expect(err).NotTo(HaveOccurred())
			Expect(v.op.Width()).To(Equal(DefaultKernelWidth))
		})
	})

	Describe("penalty forcing law", func() {
		It("produces exactly zero forcing at the zero-mismatch fixed point", func() {
			fg := newPointGrid(3, 1)
			fg.pos[0][0], fg.pos[1][0], fg.pos[2][0] = 2, 2, 2
			fg.vel[0][0], fg.vel[1][0], fg.vel[2][0] = 0.3, -0.2, 0.1

			vel := grid.NewVectorField[float64](dom)
			vel.SetUniform(0.3, -0.2, 0.1)

			v, err := NewVirtualBoundaryForcing(dom, ForcingGrid[float64](fg),
				Config{Stiffness: -100, Damping: -10})
			Expect(err).NotTo(HaveOccurred())
			Expect(v.TimeStep(vel, 0.01)).To(Succeed())
			for c := 0; c < 3; c++ {
				Expect(v.MarkerForcing()[c][0]).To(BeNumerically("~", 0, 1e-10))
			}
		})

		It("starts with the pure damping term and accumulates displacement error", func() {
			// Marker at a cell center so a width-1 kernel interpolates the
			// cell value exactly.
			fg := newPointGrid(3, 1)
			fg.pos[0][0], fg.pos[1][0], fg.pos[2][0] = 2.125, 2.125, 2.125
			fg.vel[0][0] = 1

			vel := grid.NewVectorField[float64](dom)
			v, err := NewVirtualBoundaryForcing(dom, ForcingGrid[float64](fg),
				Config{Stiffness: -100, Damping: -10, KernelWidth: 1})
			Expect(err).NotTo(HaveOccurred())

			Expect(v.TimeStep(vel, 0.01)).To(Succeed())
			Expect(v.MarkerForcing()[0][0]).To(BeNumerically("==", -10))
			Expect(v.MarkerForcing()[1][0]).To(BeNumerically("==", 0))
			Expect(v.MarkerForcing()[2][0]).To(BeNumerically("==", 0))

			// One step integrates 0.01 of displacement error, so the next
			// forcing gains the stiffness contribution.
			Expect(v.TimeStep(vel, 0.01)).To(Succeed())
			Expect(v.MarkerForcing()[0][0]).To(BeNumerically("~", -11, 1e-12))
		})
	})

	Describe("momentum conservation", func() {
		It("spreads the exact reaction of the reduced body force", func() {
			rng := rand.New(rand.NewSource(3))
			fg := newPointGrid(3, 5)
			for m := 0; m < 5; m++ {
				for c := 0; c < 3; c++ {
					fg.pos[c][m] = 1.5 + rng.Float64()
					fg.vel[c][m] = rng.NormFloat64()
				}
			}

			velField := grid.NewVectorField[float64](dom)
			forcingField := grid.NewVectorField[float64](dom)
			for c := range velField.Data {
				for i := range velField.Data[c] {
					velField.Data[c][i] = rng.NormFloat64()
				}
			}

			fi, err := NewFlowInteraction(velField, forcingField, ForcingGrid[float64](fg),
				Config{Stiffness: -50, Damping: -5, ResetEulerianForcing: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(fi.TimeStep(0.01)).To(Succeed())
			Expect(fi.Apply()).To(Succeed())

			vol := dom.CellVolume()
			for c := 0; c < 3; c++ {
				var total float64
				for _, f := range forcingField.Data[c] {
					total += f
				}
				total *= vol
				Expect(total).To(BeNumerically("~", -fi.BodyForces[c][0], 1e-9))
			}
		})
	})

	Describe("Eulerian forcing reset", func() {
		sumField := func(f *grid.VectorField[float64]) float64 {
			var s float64
			for _, v := range f.Data[0] {
				s += v
			}
			return s
		}

		makeEngine := func(reset bool) (*VirtualBoundaryForcing[float64], *grid.VectorField[float64]) {
			fg := newPointGrid(3, 1)
			fg.pos[0][0], fg.pos[1][0], fg.pos[2][0] = 2, 2, 2
			fg.vel[0][0] = 1
			vel := grid.NewVectorField[float64](dom)
			v, err := NewVirtualBoundaryForcing(dom, ForcingGrid[float64](fg),
				Config{Damping: -10, ResetEulerianForcing: reset})
			Expect(err).NotTo(HaveOccurred())
			Expect(v.TimeStep(vel, 0.01)).To(Succeed())
			return v, grid.NewVectorField[float64](dom)
		}

		It("zeroes the target field first when enabled", func() {
			v, forcing := makeEngine(true)
			Expect(v.Apply(forcing)).To(Succeed())
			once := sumField(forcing)
			Expect(v.Apply(forcing)).To(Succeed())
			Expect(sumField(forcing)).To(BeNumerically("~", once, 1e-12))
		})

		It("accumulates into the target field when disabled", func() {
			v, forcing := makeEngine(false)
			Expect(v.Apply(forcing)).To(Succeed())
			once := sumField(forcing)
			Expect(v.Apply(forcing)).To(Succeed())
			Expect(sumField(forcing)).To(BeNumerically("~", 2*once, 1e-12))
		})
	})

	Describe("steady-state convergence", func() {
		It("converges faster with stiffer coupling at critical damping", func() {
			stiffnesses := []float64{-100, -400, -1600}
			residuals := make([]float64, len(stiffnesses))

			for i, k := range stiffnesses {
				stream, err := flow.NewStream[float64](dom, []float64{1, 0, 0})
				Expect(err).NotTo(HaveOccurred())

				fg := newPointGrid(3, 1)
				fg.pos[0][0], fg.pos[1][0], fg.pos[2][0] = 2, 2, 2

				fi, err := NewFlowInteraction(stream.Velocity, stream.Forcing, ForcingGrid[float64](fg),
					Config{
						Stiffness:            k,
						Damping:              -2 * math.Sqrt(-k),
						ResetEulerianForcing: true,
					})
				Expect(err).NotTo(HaveOccurred())

				const dt = 1e-3
				for step := 0; step < 50; step++ {
					Expect(fi.TimeStep(dt)).To(Succeed())
					Expect(fi.Apply()).To(Succeed())
					stream.TimeStep(dt)
				}
				residuals[i] = math.Abs(fi.Forcing.FlowVelocityAtMarkers()[0][0])
			}

			Expect(residuals[0]).To(BeNumerically("<", 1))
			Expect(residuals[1]).To(BeNumerically("<", residuals[0]))
			Expect(residuals[2]).To(BeNumerically("<", residuals[1]))
		})
	})

	Describe("out of domain markers", func() {
		It("fails the step instead of clamping the kernel support", func() {
			fg := newPointGrid(3, 1)
			fg.pos[0][0], fg.pos[1][0], fg.pos[2][0] = 0.1, 2, 2
			vel := grid.NewVectorField[float64](dom)
			v, err := NewVirtualBoundaryForcing(dom, ForcingGrid[float64](fg),
				Config{Stiffness: -1, Damping: -1})
			Expect(err).NotTo(HaveOccurred())
			Expect(v.TimeStep(vel, 0.01)).To(MatchError(interp.ErrOutOfDomain))
		})
	})

	Describe("suggested timestep", func() {
		It("tightens with both gains", func() {
			fg := newPointGrid(3, 1)
			fg.pos[0][0], fg.pos[1][0], fg.pos[2][0] = 2, 2, 2
			v, err := NewVirtualBoundaryForcing(dom, ForcingGrid[float64](fg),
				Config{Stiffness: -400, Damping: -10})
			Expect(err).NotTo(HaveOccurred())
			// 2/sqrt(400) = 0.1 < 2/10 = 0.2
			Expect(v.SuggestedTimestep(1)).To(BeNumerically("~", 0.1, 1e-12))
		})
	})
})
