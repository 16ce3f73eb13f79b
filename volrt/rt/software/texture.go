package software

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
)

type Texture struct {
	id       uuid.UUID
	desc     gfx.TextureDesc
	data     []byte
	released bool
}

func checkUpload(desc gfx.TextureDesc, data []byte) error {
	if desc.Width <= 0 || desc.Height <= 0 || desc.Depth <= 0 {
		return fmt.Errorf("software: invalid texture size %dx%dx%d", desc.Width, desc.Height, desc.Depth)
	}
	if desc.Layout != gfx.Red || desc.Type != gfx.UnsignedByte {
		return fmt.Errorf("software: only single-channel byte textures are supported")
	}
	if len(data) != desc.Texels() {
		return fmt.Errorf("software: %d bytes for %d texels", len(data), desc.Texels())
	}
	return nil
}

func (t *Texture) ID() uuid.UUID         { return t.id }
func (t *Texture) Desc() gfx.TextureDesc { return t.desc }
func (t *Texture) Released() bool        { return t.released }

func (t *Texture) Release() {
	t.released = true
	t.data = nil
}

func (t *Texture) texel(x, y, z int) float32 {
	x = min(max(x, 0), t.desc.Width-1)
	y = min(max(y, 0), t.desc.Height-1)
	z = min(max(z, 0), t.desc.Depth-1)
	return float32(t.data[x+y*t.desc.Width+z*t.desc.Width*t.desc.Height])
}

// Sample reads the texture trilinearly at normalised coordinates, clamping
// to the edge. The result is in [0,255].
func (t *Texture) Sample(uvw mgl32.Vec3) float32 {
	if t.data == nil {
		return 0
	}
	fx := uvw.X()*float32(t.desc.Width) - 0.5
	fy := uvw.Y()*float32(t.desc.Height) - 0.5
	fz := uvw.Z()*float32(t.desc.Depth) - 0.5
	x0, y0, z0 := math32.Floor(fx), math32.Floor(fy), math32.Floor(fz)
	tx, ty, tz := fx-x0, fy-y0, fz-z0
	ix, iy, iz := int(x0), int(y0), int(z0)

	lerp := func(a, b, f float32) float32 { return a + (b-a)*f }
	c00 := lerp(t.texel(ix, iy, iz), t.texel(ix+1, iy, iz), tx)
	c10 := lerp(t.texel(ix, iy+1, iz), t.texel(ix+1, iy+1, iz), tx)
	c01 := lerp(t.texel(ix, iy, iz+1), t.texel(ix+1, iy, iz+1), tx)
	c11 := lerp(t.texel(ix, iy+1, iz+1), t.texel(ix+1, iy+1, iz+1), tx)
	return lerp(lerp(c00, c10, ty), lerp(c01, c11, ty), tz)
}
