package material

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetrics"
	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
	"github.com/gekko3d/volumetrics/volrt/rt/grid"
	"github.com/gekko3d/volumetrics/volrt/rt/shading"
	"github.com/gekko3d/volumetrics/volrt/rt/voxelize"
)

// Volume ray-marches a participating medium inside its mesh's box. The
// program is chosen per frame from the shared selector.
type Volume struct {
	Params Parameters
	// Programs maps each shader kind to its program. A kind that is absent,
	// or holds a nil pointer, draws nothing.
	Programs map[ShaderKind]gfx.Program

	mu      sync.RWMutex
	density *voxelize.DensityVolume
	texture gfx.Texture
}

func NewVolume(params Parameters, programs map[ShaderKind]gfx.Program) *Volume {
	if programs == nil {
		programs = make(map[ShaderKind]gfx.Program)
	}
	return &Volume{Params: params, Programs: programs}
}

// ProgramFor resolves the program for the selector's current shader kind.
func (v *Volume) ProgramFor(sel *Selector) gfx.Program {
	return v.Programs[sel.ShaderKind()]
}

// Density returns the current density volume and its texture, if loaded.
func (v *Volume) Density() (*voxelize.DensityVolume, gfx.Texture) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.density, v.texture
}

// LoadGrid voxelizes g, uploads the result and replaces the current density.
// On any failure the current density is left untouched.
func (v *Volume) LoadGrid(g grid.Sampler, up gfx.TextureUploader, opts voxelize.Options) error {
	vol, err := voxelize.Voxelize(g, opts)
	if err != nil {
		return err
	}
	tex, err := up.Create3D(gfx.VolumeDesc(vol.Resolution), vol.Bytes())
	if err != nil {
		return fmt.Errorf("material: upload density %s: %w", vol.ID, err)
	}
	v.swap(vol, tex)
	volumetrics.OrNop(opts.Logger).Infof("density %s loaded from %q (R=%d)", vol.ID, g.Name(), vol.Resolution)
	return nil
}

// LoadFile reads every grid in path and loads the last one. Read failures
// come back as *grid.ReadError.
func (v *Volume) LoadFile(path string, vox grid.VoxOptions, up gfx.TextureUploader, opts voxelize.Options) error {
	set, err := grid.ReadFile(path, vox)
	if err != nil {
		return err
	}
	g, err := set.Last()
	if err != nil {
		return err
	}
	log := volumetrics.OrNop(opts.Logger)
	for _, skipped := range set[:len(set)-1] {
		log.Warnf("grid %q in %s skipped, only the last grid is kept", skipped.Name(), path)
	}
	return v.LoadGrid(g, up, opts)
}

func (v *Volume) swap(vol *voxelize.DensityVolume, tex gfx.Texture) {
	v.mu.Lock()
	old := v.texture
	v.density, v.texture = vol, tex
	v.mu.Unlock()
	if old != nil {
		old.Release()
	}
}

// Release frees the density texture.
func (v *Volume) Release() {
	v.swap(nil, nil)
}

func (v *Volume) render(ctx *RenderContext, mesh gfx.Mesh, model mgl32.Mat4) error {
	sel := ctx.Selector.Selection()
	return v.draw(ctx, v.Programs[sel.Kind], sel, nil, mesh, model)
}

// draw holds the read lock for the whole pass loop so a concurrent load
// cannot release the bound texture mid-frame.
func (v *Volume) draw(ctx *RenderContext, prog gfx.Program, sel Selection, extra func(gfx.Program), mesh gfx.Mesh, model mgl32.Mat4) error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	m := v.Params.medium(sel, v.texture)
	m.Extra = extra
	return shading.RenderVolume(prog, mesh, model, m, ctx.Frame)
}

// Iso extracts the surface where density crosses Threshold.
type Iso struct {
	Volume
	Program      gfx.Program
	Threshold    float32
	GradientStep float32
}

func NewIso(params Parameters, prog gfx.Program) *Iso {
	return &Iso{
		Volume:       Volume{Params: params, Programs: map[ShaderKind]gfx.Program{}},
		Program:      prog,
		Threshold:    0.5,
		GradientStep: 0.01,
	}
}

func (iso *Iso) render(ctx *RenderContext, mesh gfx.Mesh, model mgl32.Mat4) error {
	return iso.draw(ctx, iso.Program, ctx.Selector.Selection(), func(p gfx.Program) {
		p.SetFloat(shading.UniformIsoThreshold, iso.Threshold)
		p.SetFloat(shading.UniformGradientStep, iso.GradientStep)
	}, mesh, model)
}
