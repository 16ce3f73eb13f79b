// Package gfx declares the graphics contracts the materials draw through.
// Implementations live in the software, gpu and record packages.
package gfx

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type Primitive int

const (
	Triangles Primitive = iota
	Lines
	Points
)

type BlendFactor int

const (
	Zero BlendFactor = iota
	One
	SrcAlpha
	OneMinusSrcAlpha
)

type DepthFunc int

const (
	Less DepthFunc = iota
	LessEqual
	Always
)

type PolygonMode int

const (
	Fill PolygonMode = iota
	Line
)

// Default state every draw is expected to leave behind.
const (
	DefaultBlendSrc  = SrcAlpha
	DefaultBlendDst  = OneMinusSrcAlpha
	DefaultDepthFunc = Less
)

type Texture interface {
	ID() uuid.UUID
	Release()
}

// Program is a linked shader program addressed by uniform name.
type Program interface {
	Name() string
	Enable()
	Disable()
	SetFloat(name string, v float32)
	SetInt(name string, v int32)
	SetVec3(name string, v mgl32.Vec3)
	SetVec4(name string, v mgl32.Vec4)
	SetMat4(name string, v mgl32.Mat4)
	SetTexture(name string, tex Texture, slot int)
}

type Mesh interface {
	Render(p Primitive)
	// AABB is the local-space bounding box of the mesh vertices.
	AABB() (mgl32.Vec3, mgl32.Vec3)
}

type RenderState interface {
	SetBlendFunc(src, dst BlendFactor)
	SetDepthFunc(f DepthFunc)
	SetPolygonMode(m PolygonMode)
	SetCullFace(enabled bool)
}

type PixelLayout int

const (
	Red PixelLayout = iota
	RGBA
)

type DataType int

const (
	UnsignedByte DataType = iota
	Float
)

type InternalFormat int

const (
	R8 InternalFormat = iota
	R32F
	RGBA8
)

// TextureDesc describes a 3D texture upload.
type TextureDesc struct {
	Width, Height, Depth int
	Layout               PixelLayout
	Type                 DataType
	Mipmaps              bool
	InternalFormat       InternalFormat
}

// VolumeDesc is the description used for density volumes: one byte per cell.
func VolumeDesc(res int) TextureDesc {
	return TextureDesc{
		Width: res, Height: res, Depth: res,
		Layout:         Red,
		Type:           UnsignedByte,
		Mipmaps:        true,
		InternalFormat: R8,
	}
}

func (d TextureDesc) Texels() int { return d.Width * d.Height * d.Depth }

type TextureUploader interface {
	Create3D(desc TextureDesc, data []byte) (Texture, error)
}
