package voxelize

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// DensityVolume is a dense cubic scalar field sampled from a grid.
// Cells are stored x-fastest, then y, then z; every value lies in [0,255].
type DensityVolume struct {
	ID         uuid.UUID
	Resolution int
	Cells      []float32
	BBoxMin    mgl32.Vec3
	BBoxMax    mgl32.Vec3
}

func newDensityVolume(res int, bmin, bmax mgl32.Vec3) *DensityVolume {
	return &DensityVolume{
		ID:         uuid.New(),
		Resolution: res,
		Cells:      make([]float32, res*res*res),
		BBoxMin:    bmin,
		BBoxMax:    bmax,
	}
}

func (v *DensityVolume) Index(x, y, z int) int {
	return x + y*v.Resolution + z*v.Resolution*v.Resolution
}

func (v *DensityVolume) InBounds(x, y, z int) bool {
	r := v.Resolution
	return x >= 0 && y >= 0 && z >= 0 && x < r && y < r && z < r
}

// At returns the cell value, or 0 outside the volume.
func (v *DensityVolume) At(x, y, z int) float32 {
	if !v.InBounds(x, y, z) {
		return 0
	}
	return v.Cells[v.Index(x, y, z)]
}

// Bytes packs the cells into one byte per cell for an R8 texture upload.
func (v *DensityVolume) Bytes() []byte {
	out := make([]byte, len(v.Cells))
	for i, c := range v.Cells {
		out[i] = uint8(clamp255(c) + 0.5)
	}
	return out
}

// Stats summarises a volume for logging.
type Stats struct {
	NonZero int
	Max     float32
	Mean    float32
}

func (v *DensityVolume) Stats() Stats {
	var s Stats
	var sum float64
	for _, c := range v.Cells {
		if c > 0 {
			s.NonZero++
		}
		s.Max = max(s.Max, c)
		sum += float64(c)
	}
	if len(v.Cells) > 0 {
		s.Mean = float32(sum / float64(len(v.Cells)))
	}
	return s
}

func clamp255(x float32) float32 {
	return min(max(x, 0), 255)
}
