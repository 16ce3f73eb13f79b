package shading

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetrics/volrt/rt/core"
	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
)

// Medium is everything the ray-march programs need besides the frame.
type Medium struct {
	Color           mgl32.Vec4
	Absorption      float32
	Scattering      float32
	Emission        float32
	Isotropy        float32
	DensityScale    float32
	ConstantDensity float32
	StepLength      float32
	MaxLightSteps   int32
	NoiseScale      float32
	NoiseDetail     int32
	Jittering       bool
	VolumeType      int32
	DensitySource   int32

	// Density is bound to slot 0 when present.
	Density gfx.Texture
	// Extra uploads variant-specific uniforms after the common set.
	Extra func(p gfx.Program)
}

// RenderVolume ray-marches the box of mesh with one pass per light.
// Ray marching happens in the mesh's local space, so the camera position is
// uploaded after the inverse model transform.
func RenderVolume(prog gfx.Program, mesh gfx.Mesh, model mgl32.Mat4, m *Medium, f *Frame) error {
	if Missing(prog, mesh) {
		return ErrMissingResource
	}
	boxMin, boxMax := mesh.AABB()
	localEye := core.ToLocal(model, f.Camera.Eye())

	return MultiPass(prog, mesh, model, f, func(p gfx.Program, _ bool) {
		p.SetMat4(UniformViewProjection, f.Camera.ViewProjection())
		p.SetVec3(UniformCameraPosition, localEye)
		p.SetMat4(UniformModel, model)
		p.SetVec4(UniformColor, m.Color)

		p.SetFloat(UniformAbsorption, m.Absorption)
		p.SetFloat(UniformScattering, m.Scattering)
		p.SetFloat(UniformEmission, m.Emission)
		p.SetVec3(UniformBoxMin, boxMin)
		p.SetVec3(UniformBoxMax, boxMax)
		p.SetVec4(UniformBackgroundColor, f.Background)

		p.SetInt(UniformVolumeType, m.VolumeType)
		p.SetFloat(UniformStepLength, m.StepLength)
		p.SetInt(UniformMaxLightSteps, m.MaxLightSteps)
		p.SetFloat(UniformNoiseScale, m.NoiseScale)
		p.SetInt(UniformNoiseDetail, m.NoiseDetail)
		p.SetInt(UniformDensitySource, m.DensitySource)
		p.SetFloat(UniformDensityScale, m.DensityScale)
		p.SetFloat(UniformConstantDensity, m.ConstantDensity)
		p.SetFloat(UniformIsotropy, m.Isotropy)
		p.SetInt(UniformJittering, boolToInt(m.Jittering))

		if m.Density != nil {
			p.SetTexture(UniformDensityTexture, m.Density, DensityTextureSlot)
		}
		if m.Extra != nil {
			m.Extra(p)
		}
	})
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
