package software

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetrics/volrt/rt/core"
	"github.com/gekko3d/volumetrics/volrt/rt/shading"
)

// Integer values of u_volume_type and u_density_source, in selector order.
const (
	volumeHomogeneous = 0

	densityConstant = 0
	densityNoise    = 1
	densityTexture  = 2
)

const minAlpha = 1e-6

// Volume programs return straight (non-premultiplied) colour: rgb is the
// radiance gathered along the ray divided by its opacity, alpha is one minus
// the transmittance.
// Under (SrcAlpha, OneMinusSrcAlpha) the first pass composites the medium
// over the cleared background; under (SrcAlpha, One) later passes add only
// their own light.
func finish(radiance mgl32.Vec3, transmittance float32) (mgl32.Vec4, bool) {
	a := 1 - transmittance
	if a < minAlpha {
		return mgl32.Vec4{}, false
	}
	return radiance.Mul(1 / a).Vec4(a), true
}

// ambientWeight scales unlit terms so they count on the first pass only.
func (p *Program) ambientWeight() float32 { return p.vec4s[shading.UniformAmbientLight].W() }

func (p *Program) ambient() mgl32.Vec3 { return p.vec4s[shading.UniformAmbientLight].Vec3() }

func (p *Program) color() mgl32.Vec4 { return p.vec4s[shading.UniformColor] }

func (p *Program) density(pos mgl32.Vec3, f *fragment) float32 {
	scale := p.floats[shading.UniformDensityScale]
	constant := p.floats[shading.UniformConstantDensity] * scale
	if p.ints[shading.UniformVolumeType] == volumeHomogeneous {
		return constant
	}
	switch p.ints[shading.UniformDensitySource] {
	case densityNoise:
		q := pos.Mul(p.floats[shading.UniformNoiseScale])
		return FBM(q, p.ints[shading.UniformNoiseDetail]) * scale
	case densityTexture:
		tex := p.textures[shading.UniformDensityTexture]
		if tex == nil {
			// no volume loaded yet
			return constant
		}
		size := f.boxMax.Sub(f.boxMin)
		rel := pos.Sub(f.boxMin)
		uvw := mgl32.Vec3{rel.X() / size.X(), rel.Y() / size.Y(), rel.Z() / size.Z()}
		return tex.Sample(uvw) / 255 * scale
	default:
		return constant
	}
}

// march visits the ray span in steps of u_step_length, offset per pixel when
// jittering is on. fn returns false to stop early.
func (p *Program) march(f *fragment, fn func(pos mgl32.Vec3, dt float32) bool) {
	step := p.floats[shading.UniformStepLength]
	if step <= 0 {
		step = 0.01
	}
	t := f.t0
	if p.ints[shading.UniformJittering] != 0 {
		t += step * hash2(f.x, f.y)
	}
	for ; t < f.t1; t += step {
		dt := min(step, f.t1-t)
		if !fn(f.at(t+dt/2), dt) {
			return
		}
	}
}

// light returns the unit direction towards the pass light and its radiance
// at pos. The no-light fallback uploads a black colour, which yields zero.
func (p *Program) light(pos mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3, bool) {
	c := p.vec4s[core.UniformLightColor].Vec3().Mul(p.floats[core.UniformLightIntensity])
	if c == (mgl32.Vec3{}) {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	kind := core.LightType(p.ints[core.UniformLightType])
	if kind == core.DirectionalLight {
		l := p.vec3s[core.UniformLightLocalDir].Mul(-1)
		if l.Len() == 0 {
			return mgl32.Vec3{}, mgl32.Vec3{}, false
		}
		return l.Normalize(), c, true
	}

	l := p.vec3s[core.UniformLightLocalPosition].Sub(pos)
	if l.Len() == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	// range and cone are defined in world space
	world := mgl32.TransformNormal(l, p.mat4(shading.UniformModel))
	att := core.Attenuation(kind, world.Len(), p.floats[core.UniformLightMaxDistance])
	if kind == core.SpotLight {
		axis := p.vec3s[core.UniformLightDirection]
		if axis.Len() > 0 && world.Normalize().Mul(-1).Dot(axis.Normalize()) < p.floats[core.UniformLightConeCos] {
			att = 0
		}
	}
	if att <= 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	return l.Normalize(), c.Mul(att), true
}

// transmittanceTo marches from pos towards the light until the box exit in
// u_max_light_steps steps.
func (p *Program) transmittanceTo(pos, l mgl32.Vec3, f *fragment, sigma float32) float32 {
	_, exit, hit := intersectBox(pos, l, f.boxMin, f.boxMax)
	if !hit || exit <= 0 {
		return 1
	}
	n := max(p.ints[shading.UniformMaxLightSteps], 1)
	ds := exit / float32(n)
	var sum float32
	for i := int32(0); i < n; i++ {
		sum += p.density(pos.Add(l.Mul((float32(i)+0.5)*ds)), f)
	}
	return math32.Exp(-sigma * sum * ds)
}

// henyeyGreenstein is scaled by 4π so the isotropic case is 1.
func henyeyGreenstein(cosTheta, g float32) float32 {
	denom := 1 + g*g - 2*g*cosTheta
	return (1 - g*g) / (denom * math32.Sqrt(denom))
}

func mulVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a.X() * b.X(), a.Y() * b.Y(), a.Z() * b.Z()}
}

func shadeAbsorption(p *Program, f *fragment) (mgl32.Vec4, bool) {
	mu := p.floats[shading.UniformAbsorption]
	tau := float32(0)
	p.march(f, func(pos mgl32.Vec3, dt float32) bool {
		tau += mu * p.density(pos, f) * dt
		return true
	})
	tr := math32.Exp(-tau)
	return finish(mulVec(p.color().Vec3(), p.ambient()).Mul(1-tr), tr)
}

func shadeEmissionAbsorption(p *Program, f *fragment) (mgl32.Vec4, bool) {
	mu := p.floats[shading.UniformAbsorption]
	emission := p.color().Vec3().Mul(p.floats[shading.UniformEmission] * p.ambientWeight())
	tr := float32(1)
	var L mgl32.Vec3
	p.march(f, func(pos mgl32.Vec3, dt float32) bool {
		d := p.density(pos, f)
		L = L.Add(emission.Mul(tr * d * dt))
		tr *= math32.Exp(-mu * d * dt)
		return true
	})
	return finish(L, tr)
}

func shadeScattering(p *Program, f *fragment) (mgl32.Vec4, bool) {
	mu := p.floats[shading.UniformAbsorption]
	sigmaS := p.floats[shading.UniformScattering]
	sigmaT := mu + sigmaS
	g := mgl32.Clamp(p.floats[shading.UniformIsotropy], -0.999, 0.999)
	albedo := p.color().Vec3()
	ambient := p.ambient()
	emission := albedo.Mul(p.floats[shading.UniformEmission] * p.ambientWeight())

	tr := float32(1)
	var L mgl32.Vec3
	p.march(f, func(pos mgl32.Vec3, dt float32) bool {
		d := p.density(pos, f)
		if d <= 0 {
			return true
		}
		inScatter := ambient
		if l, radiance, ok := p.light(pos); ok {
			phase := henyeyGreenstein(l.Dot(f.dir), g)
			tl := p.transmittanceTo(pos, l, f, sigmaT)
			inScatter = inScatter.Add(radiance.Mul(phase * tl))
		}
		source := mulVec(albedo, inScatter).Mul(sigmaS).Add(emission)
		L = L.Add(source.Mul(tr * d * dt))
		tr *= math32.Exp(-sigmaT * d * dt)
		return tr > 1e-4
	})
	return finish(L, tr)
}

// lit shades an opaque surface point: ambient on the first pass plus the
// pass light's diffuse and optional Blinn-Phong specular term.
func (p *Program) lit(pos, n, view mgl32.Vec3, specular bool) mgl32.Vec3 {
	base := p.color().Vec3()
	out := mulVec(base, p.ambient())
	l, radiance, ok := p.light(pos)
	if !ok {
		return out
	}
	diffuse := max(n.Dot(l), 0)
	out = out.Add(mulVec(base, radiance).Mul(diffuse))
	if specular && diffuse > 0 {
		h := l.Add(view)
		if h.Len() > 0 {
			shininess := max(p.floats[core.UniformLightShininess], 1)
			out = out.Add(radiance.Mul(math32.Pow(max(n.Dot(h.Normalize()), 0), shininess)))
		}
	}
	return out
}

func shadeBasic(p *Program, f *fragment) (mgl32.Vec4, bool) {
	pos, n, ok := f.surface(p.dev.cull)
	if !ok {
		return mgl32.Vec4{}, false
	}
	return p.lit(pos, n, f.dir.Mul(-1), false).Vec4(1), true
}

func shadeStandard(p *Program, f *fragment) (mgl32.Vec4, bool) {
	pos, n, ok := f.surface(p.dev.cull)
	if !ok {
		return mgl32.Vec4{}, false
	}
	return p.lit(pos, n, f.dir.Mul(-1), true).Vec4(1), true
}

func shadeNormal(p *Program, f *fragment) (mgl32.Vec4, bool) {
	_, n, ok := f.surface(p.dev.cull)
	if !ok {
		return mgl32.Vec4{}, false
	}
	c := n.Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5}).Mul(p.ambientWeight())
	return c.Vec4(1), true
}

func shadeFlat(p *Program, f *fragment) (mgl32.Vec4, bool) {
	if _, _, ok := f.surface(p.dev.cull); !ok {
		return mgl32.Vec4{}, false
	}
	return p.color(), true
}

func shadeIso(p *Program, f *fragment) (mgl32.Vec4, bool) {
	threshold := p.floats[shading.UniformIsoThreshold]
	h := p.floats[shading.UniformGradientStep]
	if h <= 0 {
		h = 0.01
	}
	var hitPos mgl32.Vec3
	hit := false
	p.march(f, func(pos mgl32.Vec3, _ float32) bool {
		if p.density(pos, f) >= threshold {
			hitPos, hit = pos, true
			return false
		}
		return true
	})
	if !hit {
		return mgl32.Vec4{}, false
	}

	grad := mgl32.Vec3{
		p.density(hitPos.Add(mgl32.Vec3{h, 0, 0}), f) - p.density(hitPos.Sub(mgl32.Vec3{h, 0, 0}), f),
		p.density(hitPos.Add(mgl32.Vec3{0, h, 0}), f) - p.density(hitPos.Sub(mgl32.Vec3{0, h, 0}), f),
		p.density(hitPos.Add(mgl32.Vec3{0, 0, h}), f) - p.density(hitPos.Sub(mgl32.Vec3{0, 0, h}), f),
	}
	n := f.dir.Mul(-1)
	if grad.Len() > 0 {
		// density grows inwards, so the outward normal is the negated gradient
		n = grad.Normalize().Mul(-1)
	}
	return p.lit(hitPos, n, f.dir.Mul(-1), false).Vec4(1), true
}
