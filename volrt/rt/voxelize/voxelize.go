// Package voxelize converts sparse grids into dense density volumes.
package voxelize

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetrics"
	"github.com/gekko3d/volumetrics/volrt/rt/grid"
)

const DefaultResolution = 128

type Options struct {
	// Resolution is the edge length R of the R³ lattice.
	Resolution int
	// BleedRadius splats each sample over a cube of side 2*BleedRadius.
	// Zero writes samples unsplatted.
	BleedRadius int
	// Workers bounds the sampling pool. Zero uses runtime.NumCPU.
	Workers int
	Logger  volumetrics.Logger
}

func DefaultOptions() Options {
	return Options{Resolution: DefaultResolution}
}

// Voxelize samples g on a Resolution³ lattice spanning its world bounding box.
//
// Samples are gathered in parallel, then splatted in lattice order. Overlapping
// splats clamp after every contribution, so the accumulated magnitude depends
// on that order.
func Voxelize(g grid.Sampler, opts Options) (*DensityVolume, error) {
	if opts.Resolution <= 0 {
		opts.Resolution = DefaultResolution
	}
	if opts.BleedRadius < 0 {
		return nil, fmt.Errorf("voxelize: negative bleed radius %d", opts.BleedRadius)
	}
	log := volumetrics.OrNop(opts.Logger)

	if g.ActiveVoxelCount() == 0 {
		return nil, grid.ErrEmptyGrid
	}

	res := opts.Resolution
	bmin, bmax := g.WorldBBox()
	step := bmax.Sub(bmin).Mul(1 / float32(res))

	origin := g.WorldToIndex(bmin)
	ex := g.WorldToIndexVector(mgl32.Vec3{step.X(), 0, 0})
	ey := g.WorldToIndexVector(mgl32.Vec3{0, step.Y(), 0})
	ez := g.WorldToIndexVector(mgl32.Vec3{0, 0, step.Z()})

	log.Debugf("voxelize %q: R=%d bleed=%d bbox=%v..%v", g.Name(), res, opts.BleedRadius, bmin, bmax)

	samples := sampleLattice(g, res, origin, ex, ey, ez, opts.Workers)

	vol := newDensityVolume(res, bmin, bmax)
	if opts.BleedRadius == 0 {
		for i, s := range samples {
			vol.Cells[i] = clamp255(s * 255)
		}
	} else {
		splat(vol, samples, opts.BleedRadius)
	}

	if log.DebugEnabled() {
		st := vol.Stats()
		log.Debugf("voxelize %q: %d non-zero cells, max %.1f, mean %.3f", g.Name(), st.NonZero, st.Max, st.Mean)
	}
	return vol, nil
}

// sampleLattice evaluates the grid at every lattice point, one z slice per task.
// Each task writes a disjoint range of the result.
func sampleLattice(g grid.Sampler, res int, origin, ex, ey, ez mgl32.Vec3, workers int) []float32 {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	samples := make([]float32, res*res*res)

	pool := pond.NewPool(workers)
	defer pool.StopAndWait()

	var wg sync.WaitGroup
	for k := 0; k < res; k++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			base := k * res * res
			pz := origin.Add(ez.Mul(float32(k)))
			for j := 0; j < res; j++ {
				py := pz.Add(ey.Mul(float32(j)))
				for i := 0; i < res; i++ {
					samples[base+j*res+i] = g.Value(py.Add(ex.Mul(float32(i))))
				}
			}
		})
	}
	wg.Wait()
	return samples
}

// splat spreads every sample over the cube [-b,b)³ around its lattice index
// with a linear radial falloff reaching zero at distance b/2.
func splat(vol *DensityVolume, samples []float32, b int) {
	res := vol.Resolution
	kernel := falloffKernel(b)
	side := 2 * b

	for k := 0; k < res; k++ {
		for j := 0; j < res; j++ {
			for i := 0; i < res; i++ {
				s := samples[i+j*res+k*res*res]
				if s == 0 {
					continue
				}
				v := s * 255
				for dz := -b; dz < b; dz++ {
					z := k + dz
					if z < 0 || z >= res {
						continue
					}
					for dy := -b; dy < b; dy++ {
						y := j + dy
						if y < 0 || y >= res {
							continue
						}
						for dx := -b; dx < b; dx++ {
							x := i + dx
							if x < 0 || x >= res {
								continue
							}
							f := kernel[(dx+b)+(dy+b)*side+(dz+b)*side*side]
							if f == 0 {
								continue
							}
							idx := vol.Index(x, y, z)
							vol.Cells[idx] = clamp255(vol.Cells[idx] + v*f)
						}
					}
				}
			}
		}
	}
}

func falloffKernel(b int) []float32 {
	side := 2 * b
	kernel := make([]float32, side*side*side)
	half := float32(b) / 2
	for dz := -b; dz < b; dz++ {
		for dy := -b; dy < b; dy++ {
			for dx := -b; dx < b; dx++ {
				d := math32.Sqrt(float32(dx*dx + dy*dy + dz*dz))
				kernel[(dx+b)+(dy+b)*side+(dz+b)*side*side] = Falloff(d, half)
			}
		}
	}
	return kernel
}

// Falloff is the linear radial weight 1 - d/radius clamped to [0,1].
func Falloff(d, radius float32) float32 {
	if radius <= 0 {
		return 0
	}
	return math32.Min(math32.Max(1-d/radius, 0), 1)
}
