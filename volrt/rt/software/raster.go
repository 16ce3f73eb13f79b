package software

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
	"github.com/gekko3d/volumetrics/volrt/rt/shading"
)

// fragment is one pixel's ray through the mesh box, in the mesh's local space.
type fragment struct {
	x, y   int
	origin mgl32.Vec3
	dir    mgl32.Vec3 // unit length
	t0, t1 float32    // t0 clamped to the ray origin
	enter  float32    // unclamped entry distance
	boxMin mgl32.Vec3
	boxMax mgl32.Vec3
}

func (f *fragment) at(t float32) mgl32.Vec3 { return f.origin.Add(f.dir.Mul(t)) }

// Box is an axis-aligned box mesh. Drawing it casts one ray per pixel and
// hands the covered span to the active program.
type Box struct {
	dev      *Device
	min, max mgl32.Vec3
}

func (d *Device) NewBox(bmin, bmax mgl32.Vec3) *Box {
	return &Box{dev: d, min: bmin, max: bmax}
}

// UnitBox spans [-1,1] on every axis.
func (d *Device) UnitBox() *Box {
	return d.NewBox(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
}

func (b *Box) AABB() (mgl32.Vec3, mgl32.Vec3) { return b.min, b.max }

func (b *Box) Render(_ gfx.Primitive) {
	d := b.dev
	p := d.activeProgram()
	if p == nil {
		d.log.Warnf("software: draw without an enabled program")
		return
	}
	d.mu.Lock()
	d.draws++
	d.mu.Unlock()

	vp := p.mat4(shading.UniformViewProjection)
	model := p.mat4(shading.UniformModel)
	invVP := vp.Inv()
	invModel := model.Inv()
	w, h := float32(d.Width), float32(d.Height)

	d.rows(func(y int) {
		for x := 0; x < d.Width; x++ {
			ndcX := 2*(float32(x)+0.5)/w - 1
			ndcY := 1 - 2*(float32(y)+0.5)/h
			near := unproject(invVP, ndcX, ndcY, -1)
			far := unproject(invVP, ndcX, ndcY, 1)

			lo := mgl32.TransformCoordinate(near, invModel)
			dir := mgl32.TransformCoordinate(far, invModel).Sub(lo)
			if dir.Len() == 0 {
				continue
			}
			dir = dir.Normalize()

			enter, exit, hit := intersectBox(lo, dir, b.min, b.max)
			if !hit || exit <= 0 {
				continue
			}
			f := fragment{
				x: x, y: y,
				origin: lo, dir: dir,
				t0: max(enter, 0), t1: exit, enter: enter,
				boxMin: b.min, boxMax: b.max,
			}
			if d.polygon == gfx.Line && !f.onEdge() {
				continue
			}
			c, ok := p.shade(p, &f)
			if !ok {
				continue
			}
			world := mgl32.TransformCoordinate(f.at(f.t0), model)
			clip := vp.Mul4x1(world.Vec4(1))
			d.write(x, y, c, clip.Z()/clip.W())
		}
	})
}

func unproject(invVP mgl32.Mat4, x, y, z float32) mgl32.Vec3 {
	v := invVP.Mul4x1(mgl32.Vec4{x, y, z, 1})
	return v.Vec3().Mul(1 / v.W())
}

// intersectBox is the slab test. enter may be negative when origin is inside.
func intersectBox(o, dir, bmin, bmax mgl32.Vec3) (enter, exit float32, hit bool) {
	enter, exit = math32.Inf(-1), math32.Inf(1)
	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if o[i] < bmin[i] || o[i] > bmax[i] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (bmin[i] - o[i]) * inv
		t2 := (bmax[i] - o[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		enter = max(enter, t1)
		exit = min(exit, t2)
	}
	return enter, exit, enter <= exit
}

// surface returns the first visible box face along the ray and its normal.
// With culling on, a ray starting inside the box sees nothing.
func (f *fragment) surface(cull bool) (mgl32.Vec3, mgl32.Vec3, bool) {
	t := f.enter
	if t < 0 {
		if cull {
			return mgl32.Vec3{}, mgl32.Vec3{}, false
		}
		t = f.t1
	}
	p := f.at(t)
	return p, f.faceNormal(p), true
}

func (f *fragment) faceNormal(p mgl32.Vec3) mgl32.Vec3 {
	center := f.boxMin.Add(f.boxMax).Mul(0.5)
	half := f.boxMax.Sub(f.boxMin).Mul(0.5)
	best, axis, sign := float32(-1), 0, float32(1)
	for i := 0; i < 3; i++ {
		if half[i] == 0 {
			continue
		}
		r := (p[i] - center[i]) / half[i]
		if math32.Abs(r) > best {
			best, axis = math32.Abs(r), i
			sign = 1
			if r < 0 {
				sign = -1
			}
		}
	}
	var n mgl32.Vec3
	n[axis] = sign
	return n
}

// onEdge reports whether the entry point lies near two box faces at once.
func (f *fragment) onEdge() bool {
	p := f.at(f.t0)
	size := f.boxMax.Sub(f.boxMin)
	width := 0.02 * max(size.X(), size.Y(), size.Z())
	near := 0
	for i := 0; i < 3; i++ {
		if math32.Abs(p[i]-f.boxMin[i]) < width || math32.Abs(p[i]-f.boxMax[i]) < width {
			near++
		}
	}
	return near >= 2
}
