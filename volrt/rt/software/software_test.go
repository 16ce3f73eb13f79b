package software

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/volumetrics/volrt/rt/core"
	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
	"github.com/gekko3d/volumetrics/volrt/rt/shading"
	"github.com/gekko3d/volumetrics/volrt/rt/voxelize"
)

const size = 33 // odd so the centre pixel ray is on the view axis

func frameFor(dev *Device, lights []*core.Light, ambient, bg mgl32.Vec4) *shading.Frame {
	cam := core.NewCamera()
	cam.Position = mgl32.Vec3{0, 5, 0}
	cam.LookAt(mgl32.Vec3{})
	return &shading.Frame{Camera: cam, Ambient: ambient, Background: bg, Lights: lights, State: dev}
}

func baseMedium() *shading.Medium {
	return &shading.Medium{
		Color:           mgl32.Vec4{1, 1, 1, 1},
		Absorption:      1,
		Scattering:      1,
		DensityScale:    1,
		ConstantDensity: 1,
		StepLength:      0.05,
		MaxLightSteps:   8,
	}
}

func renderVolume(t *testing.T, kind string, m *shading.Medium, lights []*core.Light, ambient, bg mgl32.Vec4) *Device {
	t.Helper()
	dev := NewDevice(size, size, nil)
	dev.Workers = 3
	prog, err := dev.NewProgram(kind)
	require.NoError(t, err)
	dev.Clear(bg)
	require.NoError(t, shading.RenderVolume(prog, dev.UnitBox(), mgl32.Ident4(), m, frameFor(dev, lights, ambient, bg)))
	return dev
}

func TestAbsorption_CompositesOverBackground(t *testing.T) {
	bg := mgl32.Vec4{0.1, 0.1, 0.1, 1}
	dev := renderVolume(t, KindAbsorption, baseMedium(), nil, mgl32.Vec4{0.2, 0.2, 0.2, 1}, bg)

	tr := float32(math.Exp(-2))
	want := 0.2*(1-tr) + 0.1*tr
	c := dev.Pixel(size/2, size/2)
	assert.InDelta(t, want, c.X(), 1e-3)
	assert.InDelta(t, want, c.Z(), 1e-3)

	// Rays that miss the box leave the background untouched.
	assert.Equal(t, bg, dev.Pixel(0, 0))
	assert.Equal(t, 1, dev.Draws())
}

func TestScattering_LightsAreAdditive(t *testing.T) {
	black := mgl32.Vec4{0, 0, 0, 1}
	m := baseMedium()
	m.Isotropy = 0.4
	a := core.NewPointLight(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{1, 0.5, 0.2}, 2)
	b := core.NewDirectionalLight(mgl32.Vec3{-1, 0, -1}, mgl32.Vec3{0.2, 0.4, 1}, 1.5)

	both := renderVolume(t, KindScattering, m, []*core.Light{a, b}, mgl32.Vec4{}, black)
	onlyA := renderVolume(t, KindScattering, m, []*core.Light{a}, mgl32.Vec4{}, black)
	onlyB := renderVolume(t, KindScattering, m, []*core.Light{b}, mgl32.Vec4{}, black)

	assert.Equal(t, 2, both.Draws())
	lit := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			sum := onlyA.Pixel(x, y).Vec3().Add(onlyB.Pixel(x, y).Vec3())
			got := both.Pixel(x, y).Vec3()
			for i := 0; i < 3; i++ {
				if math.Abs(float64(sum[i]-got[i])) > 1e-4 {
					t.Fatalf("pixel (%d,%d) channel %d: %v != %v + %v", x, y, i, got[i], onlyA.Pixel(x, y)[i], onlyB.Pixel(x, y)[i])
				}
			}
			if got.Len() > 0 {
				lit++
			}
		}
	}
	assert.Positive(t, lit)

	// Default state is back after the additive passes.
	assert.Equal(t, gfx.DefaultBlendSrc, both.blendSrc)
	assert.Equal(t, gfx.DefaultBlendDst, both.blendDst)
	assert.Equal(t, gfx.DefaultDepthFunc, both.depthFunc)
}

func TestScattering_NoLightsUsesAmbientOnly(t *testing.T) {
	black := mgl32.Vec4{0, 0, 0, 1}
	dark := renderVolume(t, KindScattering, baseMedium(), nil, mgl32.Vec4{}, black)
	assert.Equal(t, mgl32.Vec3{}, dark.Pixel(size/2, size/2).Vec3())

	lit := renderVolume(t, KindScattering, baseMedium(), nil, mgl32.Vec4{0.3, 0.3, 0.3, 1}, black)
	assert.Greater(t, lit.Pixel(size/2, size/2).X(), float32(0))
}

func TestScattering_SpotConeAndRange(t *testing.T) {
	black := mgl32.Vec4{0, 0, 0, 1}
	centre := func(l *core.Light) mgl32.Vec3 {
		return renderVolume(t, KindScattering, baseMedium(), []*core.Light{l}, mgl32.Vec4{}, black).Pixel(size/2, size/2).Vec3()
	}

	down := core.NewSpotLight(mgl32.Vec3{0, 3, 0}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 1, 1}, 2, 20)
	up := core.NewSpotLight(mgl32.Vec3{0, 3, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 1, 1}, 2, 20)
	assert.Greater(t, centre(down).X(), float32(0))
	assert.Equal(t, mgl32.Vec3{}, centre(up), "volume outside the cone")

	near := core.NewPointLight(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{1, 1, 1}, 2)
	far := core.NewPointLight(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{1, 1, 1}, 2)
	far.MaxDistance = 1
	unbounded := core.NewPointLight(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{1, 1, 1}, 2)
	unbounded.MaxDistance = 0
	assert.Equal(t, mgl32.Vec3{}, centre(far), "volume beyond the light range")
	assert.Greater(t, centre(unbounded).X(), centre(near).X(), "range falloff dims the light")
}

func TestTextureDensityMatchesConstant(t *testing.T) {
	vol := &voxelize.DensityVolume{Resolution: 4, Cells: make([]float32, 64)}
	for i := range vol.Cells {
		vol.Cells[i] = 255
	}
	dev := NewDevice(size, size, nil)
	tex, err := dev.Create3D(gfx.VolumeDesc(4), vol.Bytes())
	require.NoError(t, err)

	ambient := mgl32.Vec4{0.5, 0.5, 0.5, 1}
	textured := baseMedium()
	textured.VolumeType = 1
	textured.DensitySource = densityTexture
	textured.Density = tex
	textured.ConstantDensity = 0

	want := renderVolume(t, KindAbsorption, baseMedium(), nil, ambient, mgl32.Vec4{0, 0, 0, 1})
	got := renderVolume(t, KindAbsorption, textured, nil, ambient, mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, want.Pixel(size/2, size/2).X(), got.Pixel(size/2, size/2).X(), 1e-4)

	tex.Release()
	assert.Equal(t, float32(0), tex.(*Texture).Sample(mgl32.Vec3{0.5, 0.5, 0.5}))
}

func TestTextureSourceWithoutVolumeUsesConstant(t *testing.T) {
	ambient := mgl32.Vec4{0.5, 0.5, 0.5, 1}
	constant := baseMedium()
	constant.VolumeType = 1
	constant.DensitySource = densityConstant
	constant.ConstantDensity = 0.6

	unbound := baseMedium()
	unbound.VolumeType = 1
	unbound.DensitySource = densityTexture
	unbound.ConstantDensity = 0.6

	want := renderVolume(t, KindAbsorption, constant, nil, ambient, mgl32.Vec4{0, 0, 0, 1})
	got := renderVolume(t, KindAbsorption, unbound, nil, ambient, mgl32.Vec4{0, 0, 0, 1})
	c := got.Pixel(size/2, size/2)
	assert.Greater(t, c.X(), float32(0))
	assert.InDelta(t, want.Pixel(size/2, size/2).X(), c.X(), 1e-5)
	assert.InDelta(t, want.Pixel(size/2, size/2).W(), c.W(), 1e-5)
}

func TestProceduralNoiseVariesDensity(t *testing.T) {
	m := baseMedium()
	m.VolumeType = 1
	m.DensitySource = densityNoise
	m.NoiseScale = 3
	m.NoiseDetail = 4
	dev := renderVolume(t, KindAbsorption, m, nil, mgl32.Vec4{1, 1, 1, 1}, mgl32.Vec4{0, 0, 0, 1})

	seen := map[uint8]bool{}
	img := dev.Image()
	for y := size / 4; y < 3*size/4; y++ {
		for x := size / 4; x < 3*size/4; x++ {
			seen[img.RGBAAt(x, y).R] = true
		}
	}
	assert.Greater(t, len(seen), 3)
}

func TestIsoSurfaceIsOpaque(t *testing.T) {
	m := baseMedium()
	m.Color = mgl32.Vec4{1, 0, 0, 1}
	m.Extra = func(p gfx.Program) {
		p.SetFloat(shading.UniformIsoThreshold, 0.5)
		p.SetFloat(shading.UniformGradientStep, 0.01)
	}
	dev := renderVolume(t, KindIso, m, nil, mgl32.Vec4{0.4, 0.4, 0.4, 1}, mgl32.Vec4{0, 0, 1, 1})
	c := dev.Pixel(size/2, size/2)
	assert.InDelta(t, 0.4, c.X(), 1e-5)
	assert.InDelta(t, 0, c.Z(), 1e-5)
}

func TestSurfacePrograms(t *testing.T) {
	dev := NewDevice(size, size, nil)
	frame := frameFor(dev, []*core.Light{core.NewDirectionalLight(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 1, 1}, 1)}, mgl32.Vec4{}, mgl32.Vec4{})
	prog, err := dev.NewProgram(KindBasic)
	require.NoError(t, err)

	dev.Clear(mgl32.Vec4{0, 0, 0, 1})
	box := dev.UnitBox()
	require.NoError(t, shading.MultiPass(prog, box, mgl32.Ident4(), frame, func(p gfx.Program, _ bool) {
		shading.CommonUniforms(p, frame, mgl32.Ident4(), mgl32.Vec4{0, 1, 0, 1})
	}))
	// The light shines straight at the +y face the camera sees.
	c := dev.Pixel(size/2, size/2)
	assert.InDelta(t, 1, c.Y(), 1e-4)
	assert.InDelta(t, 0, c.X(), 1e-4)
}

func TestWireframeDrawsEdgesOnly(t *testing.T) {
	dev := NewDevice(size, size, nil)
	frame := frameFor(dev, nil, mgl32.Vec4{}, mgl32.Vec4{})
	prog, err := dev.NewProgram(KindFlat)
	require.NoError(t, err)
	bg := mgl32.Vec4{0, 0, 0, 1}
	dev.Clear(bg)

	dev.SetPolygonMode(gfx.Line)
	prog.Enable()
	shading.CommonUniforms(prog, frame, mgl32.Ident4(), mgl32.Vec4{1, 1, 1, 1})
	dev.UnitBox().Render(gfx.Triangles)
	prog.Disable()

	assert.Equal(t, bg, dev.Pixel(size/2, size/2))
	drawn := 0
	for x := 0; x < size; x++ {
		if dev.Pixel(x, size/2) != bg {
			drawn++
		}
	}
	assert.Positive(t, drawn)
}

func TestDepthFunc(t *testing.T) {
	dev := NewDevice(1, 1, nil)
	dev.write(0, 0, mgl32.Vec4{1, 0, 0, 1}, 0.5)
	dev.write(0, 0, mgl32.Vec4{0, 1, 0, 1}, 0.5)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, dev.Pixel(0, 0), "Less rejects equal depth")

	dev.SetDepthFunc(gfx.LessEqual)
	dev.SetBlendFunc(gfx.SrcAlpha, gfx.One)
	dev.write(0, 0, mgl32.Vec4{0, 1, 0, 1}, 0.5)
	assert.Equal(t, mgl32.Vec4{1, 1, 0, 2}, dev.Pixel(0, 0))
}

func TestNewProgramAndUpload(t *testing.T) {
	dev := NewDevice(4, 4, nil)
	_, err := dev.NewProgram("phong")
	assert.Error(t, err)
	assert.Contains(t, Kinds(), KindEmissionAbsorption)

	_, err = dev.Create3D(gfx.VolumeDesc(2), make([]byte, 7))
	assert.Error(t, err)
	desc := gfx.VolumeDesc(2)
	desc.Layout = gfx.RGBA
	_, err = dev.Create3D(desc, make([]byte, 8))
	assert.Error(t, err)

	// A draw without a program is dropped.
	dev.UnitBox().Render(gfx.Triangles)
	assert.Zero(t, dev.Draws())
}

func TestTextureSample(t *testing.T) {
	dev := NewDevice(1, 1, nil)
	data := make([]byte, 8)
	data[1] = 200 // x=1, y=0, z=0
	tex, err := dev.Create3D(gfx.VolumeDesc(2), data)
	require.NoError(t, err)
	st := tex.(*Texture)

	assert.InDelta(t, 200, st.Sample(mgl32.Vec3{0.75, 0.25, 0.25}), 1e-3)
	assert.InDelta(t, 0, st.Sample(mgl32.Vec3{0.25, 0.25, 0.25}), 1e-3)
	assert.InDelta(t, 25, st.Sample(mgl32.Vec3{0.5, 0.5, 0.5}), 1e-3)
}

func TestFBM(t *testing.T) {
	for i := 0; i < 200; i++ {
		p := mgl32.Vec3{float32(i) * 0.37, float32(i) * 0.11, float32(-i) * 0.23}
		v := FBM(p, 5)
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(1))
		assert.Equal(t, v, FBM(p, 5))
	}
	assert.Equal(t, FBM(mgl32.Vec3{1.5, 2, 3}, 0), FBM(mgl32.Vec3{1.5, 2, 3}, 1))
}

func TestImagesAndMontage(t *testing.T) {
	dev := NewDevice(8, 6, nil)
	dev.Clear(mgl32.Vec4{1, 0.5, 2, 1})
	img := dev.Image()
	px := img.RGBAAt(3, 3)
	assert.Equal(t, uint8(255), px.R)
	assert.Equal(t, uint8(128), px.G)
	assert.Equal(t, uint8(255), px.B)

	scaled := Scale(img, 16, 12)
	assert.Equal(t, 16, scaled.Bounds().Dx())

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, scaled, "PNG"))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 12, decoded.Bounds().Dy())
	buf.Reset()
	require.NoError(t, Encode(&buf, scaled, "bmp"))
	assert.Equal(t, "BM", buf.String()[:2])
	assert.Error(t, Encode(&buf, scaled, "tga"))

	vol := &voxelize.DensityVolume{Resolution: 4, Cells: make([]float32, 64)}
	vol.Cells[vol.Index(1, 0, 2)] = 255
	m := SliceMontage(vol, 1, 2, 8)
	assert.Equal(t, 16, m.Bounds().Dx())
	assert.Equal(t, 16, m.Bounds().Dy())
	// slice z=2 is the first tile of the second row; voxel y=0 is the bottom row
	assert.Equal(t, uint8(255), m.GrayAt(8*0+1*2, 8+7).Y)
	assert.Equal(t, uint8(0), m.GrayAt(0, 0).Y)
}

var (
	_ gfx.RenderState     = (*Device)(nil)
	_ gfx.TextureUploader = (*Device)(nil)
	_ gfx.Program         = (*Program)(nil)
	_ gfx.Mesh            = (*Box)(nil)
	_ gfx.Texture         = (*Texture)(nil)
)
