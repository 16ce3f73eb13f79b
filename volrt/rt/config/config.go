// Package config loads the volume renderer settings from YAML or TOML.
package config

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/iancoleman/strcase"

	"github.com/gekko3d/volumetrics"
	"github.com/gekko3d/volumetrics/volrt/rt/core"
	"github.com/gekko3d/volumetrics/volrt/rt/grid"
	"github.com/gekko3d/volumetrics/volrt/rt/material"
	"github.com/gekko3d/volumetrics/volrt/rt/voxelize"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Grid      GridConfig          `yaml:"grid" toml:"grid"`
	Voxelizer VoxelizerConfig     `yaml:"voxelizer" toml:"voxelizer"`
	Selector  material.Selection  `yaml:"selector" toml:"selector"`
	Material  material.Parameters `yaml:"material" toml:"material"`
	Iso       IsoConfig           `yaml:"iso" toml:"iso"`
	Scene     SceneConfig         `yaml:"scene" toml:"scene"`
	Output    OutputConfig        `yaml:"output" toml:"output"`
	Debug     bool                `yaml:"debug" toml:"debug"`
}

type GridConfig struct {
	Path      string     `yaml:"path" toml:"path"`
	VoxelSize float32    `yaml:"voxel_size" toml:"voxel_size"`
	Origin    [3]float32 `yaml:"origin" toml:"origin"`
	Trilinear bool       `yaml:"trilinear" toml:"trilinear"`
}

type VoxelizerConfig struct {
	Resolution  int `yaml:"resolution" toml:"resolution"`
	BleedRadius int `yaml:"bleed_radius" toml:"bleed_radius"`
	Workers     int `yaml:"workers" toml:"workers"`
}

// IsoConfig switches the preview from the volume material to the iso surface.
type IsoConfig struct {
	Enabled      bool    `yaml:"enabled" toml:"enabled"`
	Threshold    float32 `yaml:"threshold" toml:"threshold"`
	GradientStep float32 `yaml:"gradient_step" toml:"gradient_step"`
}

type SceneConfig struct {
	Ambient    [4]float32    `yaml:"ambient" toml:"ambient"`
	Background [4]float32    `yaml:"background" toml:"background"`
	Lights     []LightConfig `yaml:"lights" toml:"lights"`
	Camera     CameraConfig  `yaml:"camera" toml:"camera"`
	// Placement positions the volume box in the world.
	Placement PlacementConfig `yaml:"placement" toml:"placement"`
}

// PlacementConfig is a translation, an XYZ euler rotation in degrees and a scale.
type PlacementConfig struct {
	Position [3]float32 `yaml:"position" toml:"position"`
	Rotation [3]float32 `yaml:"rotation" toml:"rotation"`
	Scale    [3]float32 `yaml:"scale" toml:"scale"`
}

type LightConfig struct {
	Type      string     `yaml:"type" toml:"type"`
	Position  [3]float32 `yaml:"position" toml:"position"`
	Direction [3]float32 `yaml:"direction" toml:"direction"`
	Color     [3]float32 `yaml:"color" toml:"color"`
	Intensity float32    `yaml:"intensity" toml:"intensity"`
	// ConeAngle is the spot half-angle in degrees.
	ConeAngle float32 `yaml:"cone_angle" toml:"cone_angle"`
	// Range overrides the point and spot falloff distance; negative disables it.
	Range float32 `yaml:"range" toml:"range"`
}

type CameraConfig struct {
	Distance float32 `yaml:"distance" toml:"distance"`
	Yaw      float32 `yaml:"yaw" toml:"yaw"`
	Pitch    float32 `yaml:"pitch" toml:"pitch"`
	Fov      float32 `yaml:"fov" toml:"fov"`
}

type OutputConfig struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
	// RenderScale sizes the framebuffer relative to the output image.
	RenderScale float32 `yaml:"render_scale" toml:"render_scale"`
	Preview     string  `yaml:"preview" toml:"preview"`
	Slices      string  `yaml:"slices" toml:"slices"`
	Mipmaps     bool    `yaml:"mipmaps" toml:"mipmaps"`
}

func Default() Config {
	return Config{
		Grid:      GridConfig{VoxelSize: 1},
		Voxelizer: VoxelizerConfig{Resolution: voxelize.DefaultResolution},
		Selector:  material.DefaultSelection(),
		Material:  material.DefaultParameters(),
		Iso:       IsoConfig{Threshold: 0.5, GradientStep: 0.01},
		Scene: SceneConfig{
			Ambient:    [4]float32{0.2, 0.2, 0.2, 1},
			Background: [4]float32{0.05, 0.05, 0.08, 1},
			Camera:     CameraConfig{Distance: 3.5, Yaw: 0.6, Pitch: -0.35, Fov: 60},
			Placement:  PlacementConfig{Scale: [3]float32{1, 1, 1}},
		},
		Output: OutputConfig{Width: 256, Height: 256, RenderScale: 1, Mipmaps: true},
	}
}

// Load reads path on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := Open(&cfg, path); err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Voxelizer.Resolution <= 0 {
		return fmt.Errorf("%w: resolution %d", ErrInvalid, c.Voxelizer.Resolution)
	}
	if c.Voxelizer.BleedRadius < 0 {
		return fmt.Errorf("%w: bleed radius %d", ErrInvalid, c.Voxelizer.BleedRadius)
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("%w: output size %dx%d", ErrInvalid, c.Output.Width, c.Output.Height)
	}
	if c.Output.RenderScale <= 0 {
		return fmt.Errorf("%w: render scale %v", ErrInvalid, c.Output.RenderScale)
	}
	if c.Iso.GradientStep <= 0 {
		return fmt.Errorf("%w: iso gradient step %v", ErrInvalid, c.Iso.GradientStep)
	}
	if s := c.Scene.Placement.Scale; s[0] == 0 || s[1] == 0 || s[2] == 0 {
		return fmt.Errorf("%w: placement scale %v", ErrInvalid, s)
	}
	if _, err := c.Lights(); err != nil {
		return err
	}
	return c.Material.Validate()
}

func (c Config) VoxelizeOptions(log volumetrics.Logger) voxelize.Options {
	return voxelize.Options{
		Resolution:  c.Voxelizer.Resolution,
		BleedRadius: c.Voxelizer.BleedRadius,
		Workers:     c.Voxelizer.Workers,
		Logger:      log,
	}
}

func (c Config) VoxOptions() grid.VoxOptions {
	return grid.VoxOptions{VoxelSize: c.Grid.VoxelSize, Origin: mgl32.Vec3(c.Grid.Origin), Trilinear: c.Grid.Trilinear}
}

// Placement builds the volume transform.
func (c Config) Placement() *core.Transform {
	pc := c.Scene.Placement
	t := core.NewTransform()
	t.Position = mgl32.Vec3(pc.Position)
	t.Scale = mgl32.Vec3(pc.Scale)
	r := pc.Rotation
	t.Rotation = mgl32.AnglesToQuat(mgl32.DegToRad(r[0]), mgl32.DegToRad(r[1]), mgl32.DegToRad(r[2]), mgl32.XYZ)
	return t
}

// Lights builds the scene lights. Type names accept any case style.
func (c Config) Lights() ([]*core.Light, error) {
	lights := make([]*core.Light, 0, len(c.Scene.Lights))
	for i, lc := range c.Scene.Lights {
		color := mgl32.Vec3(lc.Color)
		if color == (mgl32.Vec3{}) {
			color = mgl32.Vec3{1, 1, 1}
		}
		intensity := lc.Intensity
		if intensity == 0 {
			intensity = 1
		}
		dir := mgl32.Vec3(lc.Direction)
		var l *core.Light
		switch strcase.ToSnake(lc.Type) {
		case "point", "point_light", "":
			l = core.NewPointLight(mgl32.Vec3(lc.Position), color, intensity)
		case "directional", "directional_light":
			if dir.Len() == 0 {
				return nil, fmt.Errorf("%w: light %d has no direction", ErrInvalid, i)
			}
			l = core.NewDirectionalLight(dir, color, intensity)
		case "spot", "spot_light":
			if dir.Len() == 0 {
				return nil, fmt.Errorf("%w: light %d has no direction", ErrInvalid, i)
			}
			if lc.ConeAngle <= 0 || lc.ConeAngle >= 180 {
				return nil, fmt.Errorf("%w: light %d cone angle %v", ErrInvalid, i, lc.ConeAngle)
			}
			l = core.NewSpotLight(mgl32.Vec3(lc.Position), dir, color, intensity, lc.ConeAngle)
		default:
			return nil, fmt.Errorf("%w: light %d has unknown type %q", ErrInvalid, i, lc.Type)
		}
		switch {
		case lc.Range > 0:
			l.MaxDistance = lc.Range
		case lc.Range < 0:
			l.MaxDistance = 0
		}
		lights = append(lights, l)
	}
	return lights, nil
}
