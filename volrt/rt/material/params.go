package material

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
	"github.com/gekko3d/volumetrics/volrt/rt/shading"
)

var ErrInvalidParameter = errors.New("material: invalid parameter")

// Parameters are the per-instance coefficients of a participating medium.
type Parameters struct {
	Color           mgl32.Vec4 `yaml:"color" toml:"color"`
	Absorption      float32    `yaml:"absorption" toml:"absorption"`
	Scattering      float32    `yaml:"scattering" toml:"scattering"`
	Emission        float32    `yaml:"emission" toml:"emission"`
	Isotropy        float32    `yaml:"isotropy" toml:"isotropy"`
	DensityScale    float32    `yaml:"density_scale" toml:"density_scale"`
	ConstantDensity float32    `yaml:"constant_density" toml:"constant_density"`
	StepLength      float32    `yaml:"step_length" toml:"step_length"`
	MaxLightSteps   int32      `yaml:"max_light_steps" toml:"max_light_steps"`
	NoiseScale      float32    `yaml:"noise_scale" toml:"noise_scale"`
	NoiseDetail     int32      `yaml:"noise_detail" toml:"noise_detail"`
	Jittering       bool       `yaml:"jittering" toml:"jittering"`
}

func DefaultParameters() Parameters {
	return Parameters{
		Color:           mgl32.Vec4{1, 1, 1, 1},
		Absorption:      1.0,
		Scattering:      0.5,
		Emission:        0.0,
		Isotropy:        0.0,
		DensityScale:    1.0,
		ConstantDensity: 1.0,
		StepLength:      0.04,
		MaxLightSteps:   16,
		NoiseScale:      1.558,
		NoiseDetail:     5,
	}
}

func (p Parameters) Validate() error {
	switch {
	case p.StepLength <= 0:
		return fmt.Errorf("%w: step length %v must be positive", ErrInvalidParameter, p.StepLength)
	case p.MaxLightSteps < 1:
		return fmt.Errorf("%w: max light steps %d must be at least 1", ErrInvalidParameter, p.MaxLightSteps)
	case p.Isotropy < -1 || p.Isotropy > 1:
		return fmt.Errorf("%w: isotropy %v outside [-1,1]", ErrInvalidParameter, p.Isotropy)
	case p.NoiseDetail < 0:
		return fmt.Errorf("%w: noise detail %d is negative", ErrInvalidParameter, p.NoiseDetail)
	}
	return nil
}

func (p Parameters) medium(sel Selection, density gfx.Texture) *shading.Medium {
	return &shading.Medium{
		Color:           p.Color,
		Absorption:      p.Absorption,
		Scattering:      p.Scattering,
		Emission:        p.Emission,
		Isotropy:        p.Isotropy,
		DensityScale:    p.DensityScale,
		ConstantDensity: p.ConstantDensity,
		StepLength:      p.StepLength,
		MaxLightSteps:   p.MaxLightSteps,
		NoiseScale:      p.NoiseScale,
		NoiseDetail:     p.NoiseDetail,
		Jittering:       p.Jittering,
		VolumeType:      int32(sel.Volume),
		DensitySource:   int32(sel.Density),
		Density:         density,
	}
}
