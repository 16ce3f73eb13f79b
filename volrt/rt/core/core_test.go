package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/volumetrics/volrt/rt/gfx/record"
)

func TestCamera_LookAt(t *testing.T) {
	cam := NewCamera()
	cam.Position = mgl32.Vec3{3, -4, 2}
	target := mgl32.Vec3{0, 0, 0}
	cam.LookAt(target)

	want := target.Sub(cam.Position).Normalize()
	fwd := cam.Forward()
	assert.InDeltaSlice(t, want[:], fwd[:], 1e-5)

	// Target projects to the centre of clip space.
	clip := cam.ViewProjection().Mul4x1(target.Vec4(1))
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-5)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-5)
}

func TestCamera_Orbit(t *testing.T) {
	cam := NewCamera()
	cam.Orbit(mgl32.Vec3{1, 1, 1}, 5, 0.3, -0.2)
	assert.InDelta(t, 5, cam.Position.Sub(mgl32.Vec3{1, 1, 1}).Len(), 1e-4)
}

func TestTransform_ModelAndToLocal(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl32.Vec3{1, 2, 3}
	tr.Rotation = mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 0, 1})
	tr.Scale = mgl32.Vec3{2, 2, 2}

	origin := mgl32.TransformCoordinate(mgl32.Vec3{}, tr.Model())
	want := mgl32.Vec3{1, 2, 3}
	assert.InDeltaSlice(t, want[:], origin[:], 1e-5)

	p := mgl32.Vec3{5, -1, 0.5}
	world := mgl32.TransformCoordinate(p, tr.Model())
	local := ToLocal(tr.Model(), world)
	assert.InDeltaSlice(t, p[:], local[:], 1e-4)
}

func TestLight_SetUniforms(t *testing.T) {
	rec := record.New()
	prog := rec.Program("p")

	model := mgl32.Translate3D(10, 0, 0)
	l := NewPointLight(mgl32.Vec3{12, 0, 0}, mgl32.Vec3{1, 0.5, 0}, 3)
	l.SetUniforms(prog, model)

	calls := rec.Calls()
	v, ok := record.Uniform(calls, UniformLightLocalPosition)
	require.True(t, ok)
	want := mgl32.Vec3{2, 0, 0}
	got := v.(mgl32.Vec3)
	assert.InDeltaSlice(t, want[:], got[:], 1e-5)

	v, _ = record.Uniform(calls, UniformLightColor)
	assert.Equal(t, mgl32.Vec4{1, 0.5, 0, 1}, v)
	v, _ = record.Uniform(calls, UniformLightIntensity)
	assert.Equal(t, float32(3), v)
	v, _ = record.Uniform(calls, UniformLightType)
	assert.Equal(t, int32(PointLight), v)
}

func TestSpotLight(t *testing.T) {
	l := NewSpotLight(mgl32.Vec3{0, 4, 0}, mgl32.Vec3{0, -2, 0}, mgl32.Vec3{1, 1, 1}, 1, 60)
	assert.Equal(t, SpotLight, l.Type)
	assert.InDelta(t, 0.5, l.ConeCos, 1e-5)
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, l.Direction)

	rec := record.New()
	l.SetUniforms(rec.Program("p"), mgl32.Ident4())
	v, ok := record.Uniform(rec.Calls(), UniformLightConeCos)
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-5)
	v, _ = record.Uniform(rec.Calls(), UniformLightMaxDistance)
	assert.Equal(t, float32(100), v)
}

func TestAttenuation(t *testing.T) {
	assert.Equal(t, float32(1), Attenuation(DirectionalLight, 500, 10))
	assert.Equal(t, float32(1), Attenuation(PointLight, 500, 0))
	assert.InDelta(t, 0.75, Attenuation(PointLight, 25, 100), 1e-6)
	assert.Equal(t, float32(0), Attenuation(SpotLight, 150, 100))
}
