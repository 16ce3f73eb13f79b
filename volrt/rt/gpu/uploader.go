// Package gpu uploads density volumes to a WebGPU device as 3D textures.
package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"

	"github.com/gekko3d/volumetrics"
	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
)

// Context is a headless WebGPU device. No surface is created.
type Context struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
}

// NewHeadless requests a high performance adapter and its default device.
func NewHeadless() (*Context, error) {
	c := &Context{Instance: wgpu.CreateInstance(nil)}

	adapter, err := c.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("gpu: request adapter: %w", err)
	}
	c.Adapter = adapter

	c.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("gpu: request device: %w", err)
	}
	c.Queue = c.Device.GetQueue()
	return c, nil
}

func (c *Context) Release() {
	if c.Queue != nil {
		c.Queue.Release()
		c.Queue = nil
	}
	if c.Device != nil {
		c.Device.Release()
		c.Device = nil
	}
	if c.Adapter != nil {
		c.Adapter.Release()
		c.Adapter = nil
	}
	if c.Instance != nil {
		c.Instance.Release()
		c.Instance = nil
	}
}

// Texture is a 3D texture living on the device.
type Texture struct {
	id   uuid.UUID
	desc gfx.TextureDesc
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

func (t *Texture) ID() uuid.UUID           { return t.id }
func (t *Texture) Desc() gfx.TextureDesc   { return t.desc }
func (t *Texture) View() *wgpu.TextureView { return t.view }
func (t *Texture) Handle() *wgpu.Texture   { return t.tex }
func (t *Texture) Released() bool          { return t.tex == nil }

func (t *Texture) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

// Uploader implements gfx.TextureUploader on a WebGPU queue.
type Uploader struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue
	log    volumetrics.Logger
}

func NewUploader(c *Context, log volumetrics.Logger) *Uploader {
	return &Uploader{Device: c.Device, Queue: c.Queue, log: volumetrics.OrNop(log)}
}

func textureFormat(f gfx.InternalFormat) (wgpu.TextureFormat, error) {
	switch f {
	case gfx.R8:
		return wgpu.TextureFormatR8Unorm, nil
	case gfx.R32F:
		return wgpu.TextureFormatR32Float, nil
	case gfx.RGBA8:
		return wgpu.TextureFormatRGBA8Unorm, nil
	}
	return 0, fmt.Errorf("gpu: unsupported internal format %d", f)
}

// Create3D allocates a 3D texture with the full mip chain and writes every
// level through the queue.
func (u *Uploader) Create3D(desc gfx.TextureDesc, data []byte) (gfx.Texture, error) {
	format, err := textureFormat(desc.InternalFormat)
	if err != nil {
		return nil, err
	}
	levels, err := MipChain(desc, data)
	if err != nil {
		return nil, err
	}
	bpt, _ := bytesPerTexel(desc)

	tex, err := u.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Density Volume",
		Size:          wgpu.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: uint32(desc.Depth)},
		MipLevelCount: uint32(len(levels)),
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension3D,
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture: %w", err)
	}

	for i, l := range levels {
		u.Queue.WriteTexture(&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: uint32(i),
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
		}, l.Data, &wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(l.Width * bpt),
			RowsPerImage: uint32(l.Height),
		}, &wgpu.Extent3D{Width: uint32(l.Width), Height: uint32(l.Height), DepthOrArrayLayers: uint32(l.Depth)})
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("gpu: create view: %w", err)
	}
	u.log.Debugf("gpu: uploaded %dx%dx%d volume with %d mips", desc.Width, desc.Height, desc.Depth, len(levels))
	return &Texture{id: uuid.New(), desc: desc, tex: tex, view: view}, nil
}
