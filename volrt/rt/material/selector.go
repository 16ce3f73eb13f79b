package material

import (
	"fmt"
	"sync"

	"github.com/iancoleman/strcase"
)

// ShaderKind picks the ray-march program of every volume material.
type ShaderKind int32

const (
	Absorption ShaderKind = iota
	Basic
	Normal
	EmissionAbsorption
	Scattering
)

var shaderKindNames = []string{"Absorption", "Basic", "Normal", "Emission Absorption", "Scattering"}

func ShaderKinds() []ShaderKind {
	return []ShaderKind{Absorption, Basic, Normal, EmissionAbsorption, Scattering}
}

func (k ShaderKind) String() string { return enumName(shaderKindNames, int32(k)) }

func (k ShaderKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ShaderKind) UnmarshalText(b []byte) error {
	v, err := parseEnum("shader kind", shaderKindNames, string(b))
	*k = ShaderKind(v)
	return err
}

func ParseShaderKind(s string) (ShaderKind, error) {
	v, err := parseEnum("shader kind", shaderKindNames, s)
	return ShaderKind(v), err
}

// VolumeType selects between uniform and spatially varying density.
type VolumeType int32

const (
	Homogeneous VolumeType = iota
	Heterogeneous
)

var volumeTypeNames = []string{"Homogeneous", "Heterogeneous"}

func (v VolumeType) String() string { return enumName(volumeTypeNames, int32(v)) }

func (v VolumeType) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *VolumeType) UnmarshalText(b []byte) error {
	x, err := parseEnum("volume type", volumeTypeNames, string(b))
	*v = VolumeType(x)
	return err
}

// DensitySource is where heterogeneous density comes from.
type DensitySource int32

const (
	ConstantDensity DensitySource = iota
	ProceduralNoise
	TextureDensity
)

var densitySourceNames = []string{"Constant", "Procedural Noise", "Texture"}

func (d DensitySource) String() string { return enumName(densitySourceNames, int32(d)) }

func (d DensitySource) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DensitySource) UnmarshalText(b []byte) error {
	x, err := parseEnum("density source", densitySourceNames, string(b))
	*d = DensitySource(x)
	return err
}

func enumName(names []string, v int32) string {
	if v < 0 || int(v) >= len(names) {
		return fmt.Sprintf("Unknown(%d)", v)
	}
	return names[v]
}

// parseEnum matches s against names in any case style: "emission-absorption",
// "EmissionAbsorption" and "emission_absorption" are the same name.
func parseEnum(kind string, names []string, s string) (int32, error) {
	key := strcase.ToSnake(s)
	for i, n := range names {
		if strcase.ToSnake(n) == key {
			return int32(i), nil
		}
	}
	return 0, fmt.Errorf("material: unknown %s %q", kind, s)
}

// Selection is one snapshot of the three selector enums.
type Selection struct {
	Kind    ShaderKind    `yaml:"shader" toml:"shader"`
	Volume  VolumeType    `yaml:"volume_type" toml:"volume_type"`
	Density DensitySource `yaml:"density_source" toml:"density_source"`
}

func DefaultSelection() Selection {
	return Selection{Kind: Scattering, Volume: Homogeneous, Density: ConstantDensity}
}

// Selector is shared by every volume material of a scene. Changes take
// effect on the next render; the last write wins.
type Selector struct {
	mu  sync.RWMutex
	sel Selection
}

func NewSelector() *Selector { return &Selector{sel: DefaultSelection()} }

func (s *Selector) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel
}

func (s *Selector) Set(sel Selection) {
	s.mu.Lock()
	s.sel = sel
	s.mu.Unlock()
}

func (s *Selector) ShaderKind() ShaderKind { return s.Selection().Kind }

func (s *Selector) SetShaderKind(k ShaderKind) {
	s.mu.Lock()
	s.sel.Kind = k
	s.mu.Unlock()
}

func (s *Selector) VolumeType() VolumeType { return s.Selection().Volume }

func (s *Selector) SetVolumeType(v VolumeType) {
	s.mu.Lock()
	s.sel.Volume = v
	s.mu.Unlock()
}

func (s *Selector) DensitySource() DensitySource { return s.Selection().Density }

func (s *Selector) SetDensitySource(d DensitySource) {
	s.mu.Lock()
	s.sel.Density = d
	s.mu.Unlock()
}
