// Package record implements the gfx contracts by logging every call.
// It backs tests and the CLI pass-plan dump.
package record

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
)

type Op string

const (
	OpEnable      Op = "enable"
	OpDisable     Op = "disable"
	OpUniform     Op = "uniform"
	OpTexture     Op = "texture"
	OpDraw        Op = "draw"
	OpBlend       Op = "blend"
	OpDepth       Op = "depth"
	OpPolygonMode Op = "polygon"
	OpCullFace    Op = "cull"
	OpCreate3D    Op = "create3d"
	OpRelease     Op = "release"
)

type Call struct {
	Op     Op
	Target string
	Name   string
	Value  any
}

func (c Call) String() string {
	if c.Name == "" {
		return fmt.Sprintf("%-8s %-12s %v", c.Op, c.Target, c.Value)
	}
	return fmt.Sprintf("%-8s %-12s %s = %v", c.Op, c.Target, c.Name, c.Value)
}

// Recorder is shared by every fake it hands out so calls keep a global order.
type Recorder struct {
	mu    sync.Mutex
	calls []Call

	// FailUploads makes Create3D fail.
	FailUploads bool
}

func New() *Recorder { return &Recorder{} }

func (r *Recorder) add(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

// Count returns how many calls match op.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Passes splits the log at every draw. Each pass holds the calls issued since
// the previous draw, the draw included.
func (r *Recorder) Passes() [][]Call {
	var passes [][]Call
	var cur []Call
	for _, c := range r.Calls() {
		cur = append(cur, c)
		if c.Op == OpDraw {
			passes = append(passes, cur)
			cur = nil
		}
	}
	return passes
}

// Uniform returns the last value uploaded under name within calls.
func Uniform(calls []Call, name string) (any, bool) {
	var v any
	found := false
	for _, c := range calls {
		if (c.Op == OpUniform || c.Op == OpTexture) && c.Name == name {
			v, found = c.Value, true
		}
	}
	return v, found
}

// Dump writes the call log one call per line.
func (r *Recorder) Dump(w io.Writer) error {
	pass := 0
	for _, c := range r.Calls() {
		if _, err := fmt.Fprintln(w, c.String()); err != nil {
			return err
		}
		if c.Op == OpDraw {
			pass++
			if _, err := fmt.Fprintf(w, "---- end of pass %d\n", pass); err != nil {
				return err
			}
		}
	}
	return nil
}

type Program struct {
	rec  *Recorder
	name string
}

func (r *Recorder) Program(name string) *Program { return &Program{rec: r, name: name} }

func (p *Program) Name() string { return p.name }
func (p *Program) Enable()      { p.rec.add(Call{Op: OpEnable, Target: p.name}) }
func (p *Program) Disable()     { p.rec.add(Call{Op: OpDisable, Target: p.name}) }

func (p *Program) SetFloat(name string, v float32)   { p.uniform(name, v) }
func (p *Program) SetInt(name string, v int32)       { p.uniform(name, v) }
func (p *Program) SetVec3(name string, v mgl32.Vec3) { p.uniform(name, v) }
func (p *Program) SetVec4(name string, v mgl32.Vec4) { p.uniform(name, v) }
func (p *Program) SetMat4(name string, v mgl32.Mat4) { p.uniform(name, v) }

func (p *Program) SetTexture(name string, tex gfx.Texture, slot int) {
	p.rec.add(Call{Op: OpTexture, Target: p.name, Name: name, Value: TextureBinding{Texture: tex, Slot: slot}})
}

func (p *Program) uniform(name string, v any) {
	p.rec.add(Call{Op: OpUniform, Target: p.name, Name: name, Value: v})
}

type TextureBinding struct {
	Texture gfx.Texture
	Slot    int
}

func (b TextureBinding) String() string {
	return fmt.Sprintf("%v@slot%d", b.Texture.ID(), b.Slot)
}

type Mesh struct {
	rec      *Recorder
	name     string
	min, max mgl32.Vec3
}

func (r *Recorder) Mesh(name string, bmin, bmax mgl32.Vec3) *Mesh {
	return &Mesh{rec: r, name: name, min: bmin, max: bmax}
}

func (m *Mesh) Render(p gfx.Primitive) {
	m.rec.add(Call{Op: OpDraw, Target: m.name, Value: p})
}

func (m *Mesh) AABB() (mgl32.Vec3, mgl32.Vec3) { return m.min, m.max }

type BlendState struct{ Src, Dst gfx.BlendFactor }

// State records render-state changes and remembers the current values.
type State struct {
	rec *Recorder

	Blend   BlendState
	Depth   gfx.DepthFunc
	Polygon gfx.PolygonMode
	Cull    bool
}

func (r *Recorder) State() *State {
	return &State{
		rec:   r,
		Blend: BlendState{gfx.DefaultBlendSrc, gfx.DefaultBlendDst},
		Depth: gfx.DefaultDepthFunc,
		Cull:  true,
	}
}

func (s *State) SetBlendFunc(src, dst gfx.BlendFactor) {
	s.Blend = BlendState{src, dst}
	s.rec.add(Call{Op: OpBlend, Value: s.Blend})
}

func (s *State) SetDepthFunc(f gfx.DepthFunc) {
	s.Depth = f
	s.rec.add(Call{Op: OpDepth, Value: f})
}

func (s *State) SetPolygonMode(m gfx.PolygonMode) {
	s.Polygon = m
	s.rec.add(Call{Op: OpPolygonMode, Value: m})
}

func (s *State) SetCullFace(enabled bool) {
	s.Cull = enabled
	s.rec.add(Call{Op: OpCullFace, Value: enabled})
}

var ErrUploadFailed = errors.New("record: upload failed")

type Texture struct {
	rec      *Recorder
	id       uuid.UUID
	Desc     gfx.TextureDesc
	Data     []byte
	released bool
}

func (t *Texture) ID() uuid.UUID { return t.id }

func (t *Texture) Release() {
	t.released = true
	t.rec.add(Call{Op: OpRelease, Value: t.id})
}

func (t *Texture) Released() bool { return t.released }

// Uploader hands out in-memory textures.
type Uploader struct{ rec *Recorder }

func (r *Recorder) Uploader() *Uploader { return &Uploader{rec: r} }

func (u *Uploader) Create3D(desc gfx.TextureDesc, data []byte) (gfx.Texture, error) {
	if u.rec.FailUploads {
		return nil, ErrUploadFailed
	}
	if len(data) != desc.Texels() {
		return nil, fmt.Errorf("record: %d bytes for %dx%dx%d texture", len(data), desc.Width, desc.Height, desc.Depth)
	}
	t := &Texture{rec: u.rec, id: uuid.New(), Desc: desc, Data: data}
	u.rec.add(Call{Op: OpCreate3D, Value: t.id})
	return t, nil
}
