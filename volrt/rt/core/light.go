package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
)

type LightType int32

const (
	DirectionalLight LightType = iota
	PointLight
	SpotLight
)

const (
	UniformLightType          = "u_light_type"
	UniformLightPosition      = "u_light_position"
	UniformLightDirection     = "u_light_direction"
	UniformLightLocalPosition = "u_light_local_position"
	UniformLightLocalDir      = "u_light_local_direction"
	UniformLightColor         = "u_light_color"
	UniformLightIntensity     = "u_light_intensity"
	UniformLightShininess     = "u_light_shininess"
	UniformLightMaxDistance   = "u_light_max_distance"
	UniformLightConeCos       = "u_light_cone_cos"
)

// Light is a scene light. It uploads its own uniforms once per shading pass.
type Light struct {
	Type        LightType
	Position    mgl32.Vec3
	Direction   mgl32.Vec3 // direction the light travels
	Color       mgl32.Vec3
	Intensity   float32
	Shininess   float32
	MaxDistance float32
	ConeCos     float32
}

func NewPointLight(pos mgl32.Vec3, color mgl32.Vec3, intensity float32) *Light {
	return &Light{
		Type:        PointLight,
		Position:    pos,
		Direction:   mgl32.Vec3{0, 0, -1},
		Color:       color,
		Intensity:   intensity,
		Shininess:   20,
		MaxDistance: 100,
	}
}

// NewSpotLight lights the cone of half-angle coneDeg around dir.
func NewSpotLight(pos, dir mgl32.Vec3, color mgl32.Vec3, intensity, coneDeg float32) *Light {
	l := NewPointLight(pos, color, intensity)
	l.Type = SpotLight
	l.Direction = dir.Normalize()
	l.ConeCos = float32(math.Cos(float64(mgl32.DegToRad(coneDeg))))
	return l
}

// Attenuation is the linear range falloff of point and spot lights at
// world distance d. Directional lights and a zero MaxDistance never fade.
func Attenuation(t LightType, d, maxDistance float32) float32 {
	if t == DirectionalLight || maxDistance <= 0 {
		return 1
	}
	return mgl32.Clamp(1-d/maxDistance, 0, 1)
}

func NewDirectionalLight(dir mgl32.Vec3, color mgl32.Vec3, intensity float32) *Light {
	return &Light{
		Type:      DirectionalLight,
		Direction: dir.Normalize(),
		Color:     color,
		Intensity: intensity,
		Shininess: 20,
	}
}

// SetUniforms uploads the light in world space and in the local space of model.
func (l *Light) SetUniforms(p gfx.Program, model mgl32.Mat4) {
	inv := model.Inv()
	localDir := mgl32.TransformNormal(l.Direction, inv)
	if localDir.Len() > 0 {
		localDir = localDir.Normalize()
	}

	p.SetInt(UniformLightType, int32(l.Type))
	p.SetVec3(UniformLightPosition, l.Position)
	p.SetVec3(UniformLightDirection, l.Direction)
	p.SetVec3(UniformLightLocalPosition, ToLocal(model, l.Position))
	p.SetVec3(UniformLightLocalDir, localDir)
	p.SetVec4(UniformLightColor, l.Color.Vec4(1))
	p.SetFloat(UniformLightIntensity, l.Intensity)
	p.SetFloat(UniformLightShininess, l.Shininess)
	p.SetFloat(UniformLightMaxDistance, l.MaxDistance)
	p.SetFloat(UniformLightConeCos, l.ConeCos)
}
