package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/volumetrics/volrt/rt/core"
	"github.com/gekko3d/volumetrics/volrt/rt/material"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "scene.yaml", `
grid:
  path: smoke.vox
  voxel_size: 0.5
voxelizer:
  resolution: 64
  bleed_radius: 2
selector:
  shader: emission-absorption
  volume_type: heterogeneous
  density_source: Texture
material:
  absorption: 0.7
  step_length: 0.02
scene:
  lights:
    - type: PointLight
      position: [1, 2, 3]
    - type: directional
      direction: [0, 0, -1]
      intensity: 2
    - type: SpotLight
      position: [0, 4, 0]
      direction: [0, -1, 0]
      cone_angle: 60
      range: 12
  placement:
    position: [1, 0, -2]
    rotation: [0, 90, 0]
    scale: [2, 2, 2]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "smoke.vox", cfg.Grid.Path)
	assert.Equal(t, float32(0.5), cfg.VoxOptions().VoxelSize)
	assert.Equal(t, 64, cfg.VoxelizeOptions(nil).Resolution)
	assert.Equal(t, 2, cfg.Voxelizer.BleedRadius)
	assert.Equal(t, material.Selection{Kind: material.EmissionAbsorption, Volume: material.Heterogeneous, Density: material.TextureDensity}, cfg.Selector)
	assert.Equal(t, float32(0.7), cfg.Material.Absorption)
	// Unset fields keep their defaults.
	assert.Equal(t, material.DefaultParameters().MaxLightSteps, cfg.Material.MaxLightSteps)

	lights, err := cfg.Lights()
	require.NoError(t, err)
	require.Len(t, lights, 3)
	assert.Equal(t, core.PointLight, lights[0].Type)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, lights[0].Position)
	assert.Equal(t, core.DirectionalLight, lights[1].Type)
	assert.Equal(t, float32(2), lights[1].Intensity)
	assert.Equal(t, core.SpotLight, lights[2].Type)
	assert.InDelta(t, 0.5, lights[2].ConeCos, 1e-5)
	assert.Equal(t, float32(12), lights[2].MaxDistance)

	model := cfg.Placement().Model()
	corner := mgl32.TransformCoordinate(mgl32.Vec3{0.5, 0, 0}, model)
	want := mgl32.Vec3{1, 0, -3} // +x turns to -z, doubled, then shifted
	assert.InDeltaSlice(t, want[:], corner[:], 1e-5)
}

func TestLoad_TOML(t *testing.T) {
	path := write(t, "scene.toml", `
[voxelizer]
resolution = 32
workers = 4

[selector]
shader = "Absorption"

[scene]
ambient = [0.5, 0.5, 0.5, 1.0]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Voxelizer.Resolution)
	assert.Equal(t, 4, cfg.Voxelizer.Workers)
	assert.Equal(t, material.Absorption, cfg.Selector.Kind)
	assert.Equal(t, material.Homogeneous, cfg.Selector.Volume)
	assert.Equal(t, [4]float32{0.5, 0.5, 0.5, 1}, cfg.Scene.Ambient)
	ident := mgl32.Ident4()
	model := cfg.Placement().Model()
	assert.InDeltaSlice(t, ident[:], model[:], 1e-6)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name, file, content, want string
	}{
		{"unknown extension", "scene.ini", "", "unsupported"},
		{"unknown field", "scene.yaml", "voxelizer:\n  resolutoin: 3\n", "resolutoin"},
		{"bad enum", "scene.toml", "[selector]\nshader = \"phong\"\n", "phong"},
		{"invalid step", "scene.yaml", "material:\n  step_length: 0\n", "step length"},
		{"bad light", "scene.yaml", "scene:\n  lights:\n    - type: area\n", "area"},
		{"bad resolution", "scene.yaml", "voxelizer:\n  resolution: -1\n", "resolution"},
		{"bad render scale", "scene.yaml", "output:\n  render_scale: 0\n", "render scale"},
		{"bad iso step", "scene.toml", "[iso]\ngradient_step = -1.0\n", "gradient step"},
		{"spot without cone", "scene.yaml", "scene:\n  lights:\n    - type: spot\n      direction: [0, -1, 0]\n", "cone angle"},
		{"flat placement", "scene.toml", "[scene.placement]\nscale = [1.0, 0.0, 1.0]\n", "placement scale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.file, tt.content))
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestLoad_EmptyFileIsDefault(t *testing.T) {
	cfg, err := Load(write(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
