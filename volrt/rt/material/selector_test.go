package material

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelector_Defaults(t *testing.T) {
	s := NewSelector()
	assert.Equal(t, Scattering, s.ShaderKind())
	assert.Equal(t, Homogeneous, s.VolumeType())
	assert.Equal(t, ConstantDensity, s.DensitySource())
}

func TestSelector_AllCombinationsLegal(t *testing.T) {
	s := NewSelector()
	n := 0
	for _, k := range ShaderKinds() {
		for _, v := range []VolumeType{Homogeneous, Heterogeneous} {
			for _, d := range []DensitySource{ConstantDensity, ProceduralNoise, TextureDensity} {
				s.SetShaderKind(k)
				s.SetVolumeType(v)
				s.SetDensitySource(d)
				assert.Equal(t, Selection{k, v, d}, s.Selection())
				n++
			}
		}
	}
	assert.Equal(t, 30, n)
}

func TestSelector_ConcurrentAccess(t *testing.T) {
	s := NewSelector()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.SetShaderKind(ShaderKind(j % 5))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Selection()
			}
		}()
	}
	wg.Wait()
	assert.Contains(t, ShaderKinds(), s.ShaderKind())
}

func TestParseEnums(t *testing.T) {
	for _, in := range []string{"emission-absorption", "EmissionAbsorption", "emission_absorption", "Emission Absorption"} {
		k, err := ParseShaderKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, EmissionAbsorption, k, in)
	}

	var d DensitySource
	require.NoError(t, d.UnmarshalText([]byte("procedural_noise")))
	assert.Equal(t, ProceduralNoise, d)

	var v VolumeType
	assert.Error(t, v.UnmarshalText([]byte("gaseous")))

	b, err := Heterogeneous.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Heterogeneous", string(b))
	assert.Equal(t, "Unknown(9)", ShaderKind(9).String())
}
