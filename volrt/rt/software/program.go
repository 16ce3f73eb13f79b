package software

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
)

// Program kinds. Volume kinds match the snake_case names of the selector's
// shader kinds.
const (
	KindAbsorption         = "absorption"
	KindBasic              = "basic"
	KindNormal             = "normal"
	KindEmissionAbsorption = "emission_absorption"
	KindScattering         = "scattering"
	KindIso                = "iso"
	KindFlat               = "flat"
	KindStandard           = "standard"
)

type shaderFunc func(p *Program, f *fragment) (mgl32.Vec4, bool)

var shaders = map[string]shaderFunc{
	KindAbsorption:         shadeAbsorption,
	KindBasic:              shadeBasic,
	KindNormal:             shadeNormal,
	KindEmissionAbsorption: shadeEmissionAbsorption,
	KindScattering:         shadeScattering,
	KindIso:                shadeIso,
	KindFlat:               shadeFlat,
	KindStandard:           shadeStandard,
}

// Kinds lists every program kind the device can build.
func Kinds() []string {
	kinds := make([]string, 0, len(shaders))
	for k := range shaders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Program stores uniforms by name and shades fragments with one integrator.
type Program struct {
	dev   *Device
	kind  string
	shade shaderFunc

	floats   map[string]float32
	ints     map[string]int32
	vec3s    map[string]mgl32.Vec3
	vec4s    map[string]mgl32.Vec4
	mat4s    map[string]mgl32.Mat4
	textures map[string]*Texture
}

func (d *Device) NewProgram(kind string) (*Program, error) {
	shade, ok := shaders[kind]
	if !ok {
		return nil, fmt.Errorf("software: unknown program kind %q", kind)
	}
	return &Program{
		dev:      d,
		kind:     kind,
		shade:    shade,
		floats:   map[string]float32{},
		ints:     map[string]int32{},
		vec3s:    map[string]mgl32.Vec3{},
		vec4s:    map[string]mgl32.Vec4{},
		mat4s:    map[string]mgl32.Mat4{},
		textures: map[string]*Texture{},
	}, nil
}

func (p *Program) Name() string { return p.kind }
func (p *Program) Enable()      { p.dev.setActive(p) }
func (p *Program) Disable()     { p.dev.setActive(nil) }

func (p *Program) SetFloat(name string, v float32)   { p.floats[name] = v }
func (p *Program) SetInt(name string, v int32)       { p.ints[name] = v }
func (p *Program) SetVec3(name string, v mgl32.Vec3) { p.vec3s[name] = v }
func (p *Program) SetVec4(name string, v mgl32.Vec4) { p.vec4s[name] = v }
func (p *Program) SetMat4(name string, v mgl32.Mat4) { p.mat4s[name] = v }

// SetTexture binds tex by name. Textures from other backends are ignored.
func (p *Program) SetTexture(name string, tex gfx.Texture, _ int) {
	t, ok := tex.(*Texture)
	if !ok {
		p.dev.log.Warnf("software: program %s ignores foreign texture %T", p.kind, tex)
		delete(p.textures, name)
		return
	}
	p.textures[name] = t
}

func (p *Program) mat4(name string) mgl32.Mat4 {
	if m, ok := p.mat4s[name]; ok {
		return m
	}
	return mgl32.Ident4()
}
