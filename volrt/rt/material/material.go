// Package material implements the surface and volume materials of the
// editor and the shared variant selector that drives the volume programs.
package material

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetrics"
	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
	"github.com/gekko3d/volumetrics/volrt/rt/shading"
)

// Material is one of Flat, Wireframe, Standard, Volume or Iso.
type Material interface {
	isMaterial()
}

// RenderContext is threaded through a frame's draws.
type RenderContext struct {
	Selector *Selector
	Frame    *shading.Frame
	Logger   volumetrics.Logger
}

func NewRenderContext(sel *Selector, frame *shading.Frame, logger volumetrics.Logger) *RenderContext {
	if sel == nil {
		sel = NewSelector()
	}
	return &RenderContext{Selector: sel, Frame: frame, Logger: volumetrics.OrNop(logger)}
}

// Flat draws the mesh in a single colour.
type Flat struct {
	Color   mgl32.Vec4
	Program gfx.Program
}

func NewFlat(prog gfx.Program, color mgl32.Vec4) *Flat {
	return &Flat{Color: color, Program: prog}
}

// Wireframe draws mesh edges with face culling off.
type Wireframe struct {
	Color   mgl32.Vec4
	Program gfx.Program
}

func NewWireframe(prog gfx.Program) *Wireframe {
	return &Wireframe{Color: mgl32.Vec4{1, 1, 1, 1}, Program: prog}
}

// Standard is a lit surface accumulated over one pass per light.
type Standard struct {
	Color       mgl32.Vec4
	Texture     gfx.Texture
	ShowNormals bool
	Base        gfx.Program
	Normals     gfx.Program
}

func NewStandard(base, normals gfx.Program, color mgl32.Vec4) *Standard {
	return &Standard{Color: color, Base: base, Normals: normals}
}

func (s *Standard) Program() gfx.Program {
	if s.ShowNormals {
		return s.Normals
	}
	return s.Base
}

func (*Flat) isMaterial()      {}
func (*Wireframe) isMaterial() {}
func (*Standard) isMaterial()  {}
func (*Volume) isMaterial()    {}

// Render draws m with mesh placed by model. Missing meshes or programs make
// it a no-op.
func Render(ctx *RenderContext, m Material, mesh gfx.Mesh, model mgl32.Mat4) {
	var err error
	switch m := m.(type) {
	case *Flat:
		err = renderFlat(ctx, m.Program, m.Color, mesh, model)
	case *Wireframe:
		err = renderWireframe(ctx, m, mesh, model)
	case *Standard:
		err = renderStandard(ctx, m, mesh, model)
	case *Iso:
		err = m.render(ctx, mesh, model)
	case *Volume:
		err = m.render(ctx, mesh, model)
	}
	if errors.Is(err, shading.ErrMissingResource) {
		if ctx.Logger != nil && ctx.Logger.DebugEnabled() {
			ctx.Logger.Debugf("material %T skipped: %v", m, err)
		}
		return
	}
	if err != nil && ctx.Logger != nil {
		ctx.Logger.Errorf("material %T: %v", m, err)
	}
}

func renderFlat(ctx *RenderContext, prog gfx.Program, color mgl32.Vec4, mesh gfx.Mesh, model mgl32.Mat4) error {
	if shading.Missing(prog, mesh) {
		return shading.ErrMissingResource
	}
	prog.Enable()
	shading.CommonUniforms(prog, ctx.Frame, model, color)
	mesh.Render(gfx.Triangles)
	prog.Disable()
	return nil
}

func renderWireframe(ctx *RenderContext, w *Wireframe, mesh gfx.Mesh, model mgl32.Mat4) error {
	if shading.Missing(w.Program, mesh) {
		return shading.ErrMissingResource
	}
	state := ctx.Frame.State
	if state != nil {
		state.SetPolygonMode(gfx.Line)
		state.SetCullFace(false)
	}
	err := renderFlat(ctx, w.Program, w.Color, mesh, model)
	if state != nil {
		state.SetCullFace(true)
		state.SetPolygonMode(gfx.Fill)
	}
	return err
}

func renderStandard(ctx *RenderContext, s *Standard, mesh gfx.Mesh, model mgl32.Mat4) error {
	return shading.MultiPass(s.Program(), mesh, model, ctx.Frame, func(p gfx.Program, _ bool) {
		shading.CommonUniforms(p, ctx.Frame, model, s.Color)
		if s.Texture != nil {
			p.SetTexture(shading.UniformTexture, s.Texture, shading.SurfaceTextureSlot)
		}
	})
}
