package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParameters_Validate(t *testing.T) {
	assert.NoError(t, DefaultParameters().Validate())

	tests := []struct {
		name   string
		mutate func(p *Parameters)
	}{
		{"zero step", func(p *Parameters) { p.StepLength = 0 }},
		{"negative step", func(p *Parameters) { p.StepLength = -0.1 }},
		{"no light steps", func(p *Parameters) { p.MaxLightSteps = 0 }},
		{"isotropy above", func(p *Parameters) { p.Isotropy = 1.01 }},
		{"isotropy below", func(p *Parameters) { p.Isotropy = -1.5 }},
		{"negative detail", func(p *Parameters) { p.NoiseDetail = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidParameter)
		})
	}

	edge := DefaultParameters()
	edge.Isotropy = -1
	edge.MaxLightSteps = 1
	assert.NoError(t, edge.Validate())
}

func TestParameters_Medium(t *testing.T) {
	p := DefaultParameters()
	p.Jittering = true
	m := p.medium(Selection{Kind: Basic, Volume: Heterogeneous, Density: ProceduralNoise}, nil)
	assert.Equal(t, int32(1), m.VolumeType)
	assert.Equal(t, int32(1), m.DensitySource)
	assert.Equal(t, p.StepLength, m.StepLength)
	assert.True(t, m.Jittering)
	assert.Nil(t, m.Density)
}
