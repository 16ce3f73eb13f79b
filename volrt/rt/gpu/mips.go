package gpu

import (
	"fmt"

	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
)

// Level is one mip of a 3D texture, tightly packed.
type Level struct {
	Width, Height, Depth int
	Data                 []byte
}

// MipCount returns the number of levels down to 1×1×1.
func MipCount(w, h, d int) int {
	n := 1
	for m := max(w, h, d); m > 1; m /= 2 {
		n++
	}
	return n
}

func bytesPerTexel(desc gfx.TextureDesc) (int, error) {
	switch {
	case desc.Type == gfx.UnsignedByte && desc.Layout == gfx.Red:
		return 1, nil
	case desc.Type == gfx.UnsignedByte && desc.Layout == gfx.RGBA:
		return 4, nil
	case desc.Type == gfx.Float && desc.Layout == gfx.Red:
		return 4, nil
	}
	return 0, fmt.Errorf("gpu: unsupported texel layout %d/%d", desc.Layout, desc.Type)
}

// MipChain box-filters data down to 1×1×1. Odd extents fold their last
// texel into the previous pair. Float textures get level 0 only.
func MipChain(desc gfx.TextureDesc, data []byte) ([]Level, error) {
	bpt, err := bytesPerTexel(desc)
	if err != nil {
		return nil, err
	}
	if len(data) != desc.Texels()*bpt {
		return nil, fmt.Errorf("gpu: %d bytes for %d texels of %d bytes", len(data), desc.Texels(), bpt)
	}
	levels := []Level{{desc.Width, desc.Height, desc.Depth, data}}
	if !desc.Mipmaps || desc.Type == gfx.Float {
		return levels, nil
	}
	for prev := levels[0]; prev.Width > 1 || prev.Height > 1 || prev.Depth > 1; {
		next := downsample(prev, bpt)
		levels = append(levels, next)
		prev = next
	}
	return levels, nil
}

func downsample(src Level, channels int) Level {
	w, h, d := max(src.Width/2, 1), max(src.Height/2, 1), max(src.Depth/2, 1)
	out := Level{w, h, d, make([]byte, w*h*d*channels)}

	// span maps a destination index to its inclusive source range.
	span := func(i, dst, srcN int) (int, int) {
		lo := i * srcN / dst
		hi := (i+1)*srcN/dst - 1
		return lo, max(hi, lo)
	}
	for z := 0; z < d; z++ {
		z0, z1 := span(z, d, src.Depth)
		for y := 0; y < h; y++ {
			y0, y1 := span(y, h, src.Height)
			for x := 0; x < w; x++ {
				x0, x1 := span(x, w, src.Width)
				for c := 0; c < channels; c++ {
					sum, n := 0, 0
					for sz := z0; sz <= z1; sz++ {
						for sy := y0; sy <= y1; sy++ {
							for sx := x0; sx <= x1; sx++ {
								sum += int(src.Data[((sx+sy*src.Width+sz*src.Width*src.Height)*channels)+c])
								n++
							}
						}
					}
					out.Data[(x+y*w+z*w*h)*channels+c] = byte((sum + n/2) / n)
				}
			}
		}
	}
	return out
}
