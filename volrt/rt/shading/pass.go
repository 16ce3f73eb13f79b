// Package shading runs the multi-pass light accumulation protocol shared by
// the surface and volume materials.
package shading

import (
	"errors"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetrics/volrt/rt/core"
	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
)

// ErrMissingResource means a draw was skipped because the mesh or the
// program is absent. Materials treat it as a silent no-op.
var ErrMissingResource = errors.New("shading: missing mesh or program")

// Missing reports whether prog or mesh is absent. A nil pointer stored in
// the interface counts as absent.
func Missing(prog gfx.Program, mesh gfx.Mesh) bool {
	return isNil(prog) || isNil(mesh)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Frame carries the per-frame scene state every pass reads.
type Frame struct {
	Camera     *core.Camera
	Ambient    mgl32.Vec4
	Background mgl32.Vec4
	Lights     []*core.Light
	State      gfx.RenderState
}

// PassFunc uploads the material uniforms of one pass.
type PassFunc func(p gfx.Program, first bool)

// PassCount is the number of draws issued for n lights.
func PassCount(lights int) int { return max(1, lights) }

// MultiPass draws mesh once per light, or once when there are none.
//
// The first pass carries the ambient term and writes with the default blend
// and depth state. Every later pass adds its light on top with
// (SrcAlpha, One) blending and a LessEqual depth test, with ambient zeroed.
// The default state is restored and the program disabled afterwards.
func MultiPass(prog gfx.Program, mesh gfx.Mesh, model mgl32.Mat4, f *Frame, upload PassFunc) error {
	if Missing(prog, mesh) {
		return ErrMissingResource
	}

	prog.Enable()
	passes := PassCount(len(f.Lights))
	for i := 0; i < passes; i++ {
		first := i == 0

		upload(prog, first)

		if !first && f.State != nil {
			f.State.SetBlendFunc(gfx.SrcAlpha, gfx.One)
			f.State.SetDepthFunc(gfx.LessEqual)
		}
		ambient := f.Ambient
		if !first {
			ambient = mgl32.Vec4{}
		}
		prog.SetVec4(UniformAmbientLight, ambient)

		if len(f.Lights) > 0 {
			f.Lights[i].SetUniforms(prog, model)
		} else {
			NeutralLight(prog)
		}

		mesh.Render(gfx.Triangles)
	}

	if passes > 1 && f.State != nil {
		f.State.SetBlendFunc(gfx.DefaultBlendSrc, gfx.DefaultBlendDst)
		f.State.SetDepthFunc(gfx.DefaultDepthFunc)
	}
	prog.Disable()
	return nil
}

// NeutralLight uploads the light uniforms used when the scene has no lights.
func NeutralLight(p gfx.Program) {
	p.SetFloat(UniformLightIntensity, 1)
	p.SetFloat(UniformLightShininess, 1)
	p.SetVec4(UniformLightColor, mgl32.Vec4{})
}

// CommonUniforms uploads the transform uniforms every material sets.
func CommonUniforms(p gfx.Program, f *Frame, model mgl32.Mat4, color mgl32.Vec4) {
	p.SetMat4(UniformViewProjection, f.Camera.ViewProjection())
	p.SetVec3(UniformCameraPosition, f.Camera.Eye())
	p.SetMat4(UniformModel, model)
	p.SetVec4(UniformColor, color)
}
