// Package software is a CPU implementation of the gfx contracts. It runs the
// ray-march programs per pixel so previews and tests need no GPU.
package software

import (
	"runtime"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gekko3d/volumetrics"
	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
)

// Device owns a float framebuffer with a depth buffer and the render state
// applied to every draw.
type Device struct {
	Width, Height int
	// Workers bounds the scanline pool. Zero uses runtime.NumCPU.
	Workers int

	color []mgl32.Vec4
	depth []float32

	blendSrc  gfx.BlendFactor
	blendDst  gfx.BlendFactor
	depthFunc gfx.DepthFunc
	polygon   gfx.PolygonMode
	cull      bool

	mu     sync.Mutex
	active *Program
	draws  int

	log volumetrics.Logger
}

func NewDevice(width, height int, log volumetrics.Logger) *Device {
	d := &Device{
		Width:     width,
		Height:    height,
		color:     make([]mgl32.Vec4, width*height),
		depth:     make([]float32, width*height),
		blendSrc:  gfx.DefaultBlendSrc,
		blendDst:  gfx.DefaultBlendDst,
		depthFunc: gfx.DefaultDepthFunc,
		cull:      true,
		log:       volumetrics.OrNop(log),
	}
	d.Clear(mgl32.Vec4{0, 0, 0, 1})
	return d
}

// Clear fills the colour buffer and resets depth to the far plane.
func (d *Device) Clear(c mgl32.Vec4) {
	for i := range d.color {
		d.color[i] = c
		d.depth[i] = math32.Inf(1)
	}
}

func (d *Device) Pixel(x, y int) mgl32.Vec4 { return d.color[x+y*d.Width] }

// Draws counts the mesh draws issued since creation.
func (d *Device) Draws() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws
}

func (d *Device) SetBlendFunc(src, dst gfx.BlendFactor) { d.blendSrc, d.blendDst = src, dst }
func (d *Device) SetDepthFunc(f gfx.DepthFunc)          { d.depthFunc = f }
func (d *Device) SetPolygonMode(m gfx.PolygonMode)      { d.polygon = m }
func (d *Device) SetCullFace(enabled bool)              { d.cull = enabled }

func (d *Device) setActive(p *Program) {
	d.mu.Lock()
	d.active = p
	d.mu.Unlock()
}

func (d *Device) activeProgram() *Program {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Create3D keeps the texels in memory. Mipmaps are not built; sampling
// always reads level 0.
func (d *Device) Create3D(desc gfx.TextureDesc, data []byte) (gfx.Texture, error) {
	if err := checkUpload(desc, data); err != nil {
		return nil, err
	}
	return &Texture{id: uuid.New(), desc: desc, data: append([]byte(nil), data...)}, nil
}

func blendFactor(f gfx.BlendFactor, srcAlpha float32) float32 {
	switch f {
	case gfx.Zero:
		return 0
	case gfx.SrcAlpha:
		return srcAlpha
	case gfx.OneMinusSrcAlpha:
		return 1 - srcAlpha
	default:
		return 1
	}
}

func (d *Device) depthPass(incoming, stored float32) bool {
	switch d.depthFunc {
	case gfx.LessEqual:
		return incoming <= stored
	case gfx.Always:
		return true
	default:
		return incoming < stored
	}
}

// write depth-tests and blends one fragment into the framebuffer.
func (d *Device) write(x, y int, c mgl32.Vec4, z float32) {
	i := x + y*d.Width
	if !d.depthPass(z, d.depth[i]) {
		return
	}
	sf := blendFactor(d.blendSrc, c.W())
	df := blendFactor(d.blendDst, c.W())
	d.color[i] = c.Mul(sf).Add(d.color[i].Mul(df))
	d.depth[i] = z
}

// rows runs fn for every scanline on a worker pool. Each call owns its row.
func (d *Device) rows(fn func(y int)) {
	workers := d.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := pond.NewPool(workers)
	defer pool.StopAndWait()

	var wg sync.WaitGroup
	for y := 0; y < d.Height; y++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			fn(y)
		})
	}
	wg.Wait()
}
