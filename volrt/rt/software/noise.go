package software

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func hash3(x, y, z int32) float32 {
	h := uint32(x)*374761393 + uint32(y)*668265263 + uint32(z)*2147483647
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float32(h&0xffffff) / float32(0x1000000)
}

// hash2 is the per-pixel jitter offset in [0,1).
func hash2(x, y int) float32 { return hash3(int32(x), int32(y), 17) }

func smooth(t float32) float32 { return t * t * (3 - 2*t) }

// valueNoise is trilinearly interpolated lattice noise in [0,1).
func valueNoise(p mgl32.Vec3) float32 {
	fx, fy, fz := math32.Floor(p.X()), math32.Floor(p.Y()), math32.Floor(p.Z())
	ix, iy, iz := int32(fx), int32(fy), int32(fz)
	tx, ty, tz := smooth(p.X()-fx), smooth(p.Y()-fy), smooth(p.Z()-fz)

	lerp := func(a, b, t float32) float32 { return a + (b-a)*t }
	c00 := lerp(hash3(ix, iy, iz), hash3(ix+1, iy, iz), tx)
	c10 := lerp(hash3(ix, iy+1, iz), hash3(ix+1, iy+1, iz), tx)
	c01 := lerp(hash3(ix, iy, iz+1), hash3(ix+1, iy, iz+1), tx)
	c11 := lerp(hash3(ix, iy+1, iz+1), hash3(ix+1, iy+1, iz+1), tx)
	return lerp(lerp(c00, c10, ty), lerp(c01, c11, ty), tz)
}

// FBM sums octaves of value noise, halving amplitude and doubling frequency
// each octave, normalised back to [0,1).
func FBM(p mgl32.Vec3, octaves int32) float32 {
	octaves = max(octaves, 1)
	var sum, norm float32
	amp := float32(1)
	for i := int32(0); i < octaves; i++ {
		sum += amp * valueNoise(p)
		norm += amp
		amp *= 0.5
		p = p.Mul(2)
	}
	return sum / norm
}
