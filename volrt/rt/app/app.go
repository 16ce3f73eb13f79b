// Package app runs the offline volume pipeline: load a grid, voxelize it,
// upload the density and render a preview with the software device.
package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/iancoleman/strcase"

	"github.com/gekko3d/volumetrics"
	"github.com/gekko3d/volumetrics/volrt/rt/config"
	"github.com/gekko3d/volumetrics/volrt/rt/core"
	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
	"github.com/gekko3d/volumetrics/volrt/rt/gfx/record"
	"github.com/gekko3d/volumetrics/volrt/rt/gpu"
	"github.com/gekko3d/volumetrics/volrt/rt/material"
	"github.com/gekko3d/volumetrics/volrt/rt/shading"
	"github.com/gekko3d/volumetrics/volrt/rt/software"
)

var ErrNotLoaded = errors.New("app: no density loaded")

type App struct {
	Config   config.Config
	Logger   volumetrics.Logger
	Profiler *Profiler
	Selector *material.Selector
	Device   *software.Device
	Camera   *core.Camera
	// Placement is the volume's model transform.
	Placement *core.Transform

	// Material is the volume or iso material; Volume is the density it owns.
	Material material.Material
	Volume   *material.Volume
	Debug    *material.Wireframe

	// UseGPU additionally uploads the density to a headless WebGPU device.
	UseGPU bool
	// Plan receives the recorded draw calls of the frame when set.
	Plan io.Writer
}

func NewApp(cfg config.Config, log volumetrics.Logger) *App {
	return &App{
		Config:   cfg,
		Logger:   volumetrics.OrNop(log),
		Profiler: NewProfiler(),
		Selector: material.NewSelector(),
	}
}

// ProgramName maps a shader kind to its software program.
func ProgramName(k material.ShaderKind) string {
	return strcase.ToSnake(k.String())
}

func (a *App) Init() error {
	cfg := a.Config
	w := max(int(float32(cfg.Output.Width)*cfg.Output.RenderScale), 1)
	h := max(int(float32(cfg.Output.Height)*cfg.Output.RenderScale), 1)
	a.Device = software.NewDevice(w, h, a.Logger)
	a.Device.Workers = cfg.Voxelizer.Workers
	a.Selector.Set(cfg.Selector)

	if cfg.Iso.Enabled {
		prog, err := a.Device.NewProgram(software.KindIso)
		if err != nil {
			return err
		}
		iso := material.NewIso(cfg.Material, prog)
		iso.Threshold = cfg.Iso.Threshold
		iso.GradientStep = cfg.Iso.GradientStep
		a.Material, a.Volume = iso, &iso.Volume
	} else {
		programs := make(map[material.ShaderKind]gfx.Program)
		for _, k := range material.ShaderKinds() {
			prog, err := a.Device.NewProgram(ProgramName(k))
			if err != nil {
				return err
			}
			programs[k] = prog
		}
		a.Volume = material.NewVolume(cfg.Material, programs)
		a.Material = a.Volume
	}

	if cfg.Debug {
		prog, err := a.Device.NewProgram(software.KindFlat)
		if err != nil {
			return err
		}
		a.Debug = material.NewWireframe(prog)
		a.Debug.Color = mgl32.Vec4{1, 0.8, 0.2, 1}
	}

	a.Placement = cfg.Placement()
	a.Camera = core.NewCamera()
	a.Camera.FovY = cfg.Scene.Camera.Fov
	a.Camera.Aspect = float32(w) / float32(h)
	return nil
}

// mipUploader applies the configured mip policy to every upload.
type mipUploader struct {
	gfx.TextureUploader
	mipmaps bool
}

func (u mipUploader) Create3D(desc gfx.TextureDesc, data []byte) (gfx.Texture, error) {
	desc.Mipmaps = u.mipmaps
	return u.TextureUploader.Create3D(desc, data)
}

// Load reads the configured grid into the volume.
func (a *App) Load() error {
	cfg := a.Config
	up := mipUploader{TextureUploader: a.Device, mipmaps: cfg.Output.Mipmaps}
	err := a.Profiler.Time("load", func() error {
		return a.Volume.LoadFile(cfg.Grid.Path, cfg.VoxOptions(), up, cfg.VoxelizeOptions(a.Logger))
	})
	if err != nil {
		return err
	}
	vol, _ := a.Volume.Density()
	stats := vol.Stats()
	a.Profiler.SetCount("cells", len(vol.Cells))
	a.Profiler.SetCount("nonzero", stats.NonZero)
	a.Logger.Infof("density %s: %d/%d cells set, max %.1f, mean %.2f", vol.ID, stats.NonZero, len(vol.Cells), stats.Max, stats.Mean)

	if a.UseGPU {
		return a.Profiler.Time("gpu upload", a.uploadGPU)
	}
	return nil
}

func (a *App) uploadGPU() error {
	vol, _ := a.Volume.Density()
	ctx, err := gpu.NewHeadless()
	if err != nil {
		return err
	}
	defer ctx.Release()

	up := mipUploader{TextureUploader: gpu.NewUploader(ctx, a.Logger), mipmaps: a.Config.Output.Mipmaps}
	tex, err := up.Create3D(gfx.VolumeDesc(vol.Resolution), vol.Bytes())
	if err != nil {
		return err
	}
	tex.Release()
	return nil
}

func (a *App) frame(state gfx.RenderState) (*shading.Frame, error) {
	lights, err := a.Config.Lights()
	if err != nil {
		return nil, err
	}
	return &shading.Frame{
		Camera:     a.Camera,
		Ambient:    mgl32.Vec4(a.Config.Scene.Ambient),
		Background: mgl32.Vec4(a.Config.Scene.Background),
		Lights:     lights,
		State:      state,
	}, nil
}

// bounds returns the density box and orbits the camera around its placed centre.
func (a *App) bounds() (mgl32.Vec3, mgl32.Vec3, error) {
	vol, _ := a.Volume.Density()
	if vol == nil {
		return mgl32.Vec3{}, mgl32.Vec3{}, ErrNotLoaded
	}
	c := a.Config.Scene.Camera
	model := a.model()
	center := mgl32.TransformCoordinate(vol.BBoxMin.Add(vol.BBoxMax).Mul(0.5), model)
	radius := mgl32.TransformNormal(vol.BBoxMax.Sub(vol.BBoxMin), model).Len() / 2
	a.Camera.Orbit(center, c.Distance*max(radius, 1e-3), c.Yaw, c.Pitch)
	return vol.BBoxMin, vol.BBoxMax, nil
}

func (a *App) model() mgl32.Mat4 {
	if a.Placement == nil {
		return mgl32.Ident4()
	}
	return a.Placement.Model()
}

// Render draws one frame into the device.
func (a *App) Render() error {
	bmin, bmax, err := a.bounds()
	if err != nil {
		return err
	}
	frame, err := a.frame(a.Device)
	if err != nil {
		return err
	}
	return a.Profiler.Time("render", func() error {
		a.Device.Clear(frame.Background)
		mesh := a.Device.NewBox(bmin, bmax)
		ctx := material.NewRenderContext(a.Selector, frame, a.Logger)
		// drawn first so the volume's equal-depth fragments leave the edges
		model := a.model()
		if a.Debug != nil {
			material.Render(ctx, a.Debug, mesh, model)
		}
		material.Render(ctx, a.Material, mesh, model)
		a.Profiler.SetCount("passes", shading.PassCount(len(frame.Lights)))
		a.Profiler.SetCount("draws", a.Device.Draws())
		return nil
	})
}

// WritePlan renders the frame against a call recorder and dumps the calls.
func (a *App) WritePlan(w io.Writer) error {
	bmin, bmax, err := a.bounds()
	if err != nil {
		return err
	}
	rec := record.New()
	frame, err := a.frame(rec.State())
	if err != nil {
		return err
	}

	switch m := a.Material.(type) {
	case *material.Iso:
		saved := m.Program
		m.Program = rec.Program(software.KindIso)
		defer func() { m.Program = saved }()
	case *material.Volume:
		saved := m.Programs
		m.Programs = make(map[material.ShaderKind]gfx.Program, len(saved))
		for k := range saved {
			m.Programs[k] = rec.Program(ProgramName(k))
		}
		defer func() { m.Programs = saved }()
	}

	ctx := material.NewRenderContext(a.Selector, frame, a.Logger)
	material.Render(ctx, a.Material, rec.Mesh("volume", bmin, bmax), a.model())
	return rec.Dump(w)
}

// WriteOutputs saves the preview and slice montage when configured.
func (a *App) WriteOutputs() error {
	out := a.Config.Output
	if out.Preview != "" {
		err := a.Profiler.Time("preview", func() error {
			img := software.Scale(a.Device.Image(), out.Width, out.Height)
			return software.WriteImage(out.Preview, img)
		})
		if err != nil {
			return fmt.Errorf("app: preview: %w", err)
		}
		a.Logger.Infof("preview written to %s", out.Preview)
	}
	if out.Slices != "" {
		vol, _ := a.Volume.Density()
		if vol == nil {
			return ErrNotLoaded
		}
		err := a.Profiler.Time("slices", func() error {
			step := max(vol.Resolution/16, 1)
			return software.WriteImage(out.Slices, software.SliceMontage(vol, step, 4, max(vol.Resolution, 64)))
		})
		if err != nil {
			return fmt.Errorf("app: slices: %w", err)
		}
		a.Logger.Infof("slices written to %s", out.Slices)
	}
	return nil
}

// Run executes the whole pipeline once.
func (a *App) Run() error {
	if err := a.Init(); err != nil {
		return err
	}
	defer a.Volume.Release()

	if err := a.Load(); err != nil {
		return err
	}
	if err := a.Render(); err != nil {
		return err
	}
	if a.Plan != nil {
		if err := a.WritePlan(a.Plan); err != nil {
			return err
		}
	}
	if err := a.WriteOutputs(); err != nil {
		return err
	}
	a.Logger.Infof("\n%s", a.Profiler.GetStatsString())
	return nil
}
