package software

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/gekko3d/volumetrics/volrt/rt/voxelize"
)

func toByte(v float32) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

// Image converts the framebuffer to 8-bit RGBA, clamping each channel.
func (d *Device) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			c := d.Pixel(x, y)
			img.SetRGBA(x, y, color.RGBA{toByte(c.X()), toByte(c.Y()), toByte(c.Z()), 255})
		}
	}
	return img
}

// Scale resamples img to w×h with Catmull-Rom filtering.
func Scale(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// SliceMontage lays out every step-th z slice of vol as a grid of tile×tile
// greyscale images, cols tiles per row.
func SliceMontage(vol *voxelize.DensityVolume, step, cols, tile int) *image.Gray {
	res := vol.Resolution
	step = max(step, 1)
	cols = max(cols, 1)
	if tile <= 0 {
		tile = res
	}
	n := (res + step - 1) / step
	rows := (n + cols - 1) / cols
	out := image.NewGray(image.Rect(0, 0, cols*tile, rows*tile))

	slice := image.NewGray(image.Rect(0, 0, res, res))
	for i := 0; i < n; i++ {
		z := i * step
		for y := 0; y < res; y++ {
			for x := 0; x < res; x++ {
				// flip so +y points up in the image
				slice.SetGray(x, res-1-y, color.Gray{Y: uint8(vol.At(x, y, z) + 0.5)})
			}
		}
		ox, oy := (i%cols)*tile, (i/cols)*tile
		draw.NearestNeighbor.Scale(out, image.Rect(ox, oy, ox+tile, oy+tile), slice, slice.Bounds(), draw.Src, nil)
	}
	return out
}

// Encode writes img as "png" or "bmp".
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("software: unsupported image format %q", format)
	}
}

// WriteImage encodes img into path, picking the format from the extension.
func WriteImage(path string, img image.Image) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
