package grid

import (
	"math"
	"math/bits"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	BrickSize    = 8
	SectorBricks = 4
	SectorSize   = SectorBricks * BrickSize // 32

	brickVoxels = BrickSize * BrickSize * BrickSize
)

// Brick is an 8³ leaf holding float values and a 512-bit active mask.
type Brick struct {
	ActiveMask [brickVoxels / 64]uint64
	Values     [BrickSize][BrickSize][BrickSize]float32
}

func brickBit(bx, by, bz int) (int, uint64) {
	i := bx + by*BrickSize + bz*BrickSize*BrickSize
	return i / 64, uint64(1) << (i % 64)
}

func (b *Brick) IsActive(bx, by, bz int) bool {
	w, bit := brickBit(bx, by, bz)
	return b.ActiveMask[w]&bit != 0
}

// Set activates the voxel and stores v. Returns true if the voxel was inactive.
func (b *Brick) Set(bx, by, bz int, v float32) bool {
	w, bit := brickBit(bx, by, bz)
	added := b.ActiveMask[w]&bit == 0
	b.ActiveMask[w] |= bit
	b.Values[bx][by][bz] = v
	return added
}

// Clear deactivates the voxel. Returns true if it was active.
func (b *Brick) Clear(bx, by, bz int) bool {
	w, bit := brickBit(bx, by, bz)
	removed := b.ActiveMask[w]&bit != 0
	b.ActiveMask[w] &^= bit
	b.Values[bx][by][bz] = 0
	return removed
}

func (b *Brick) IsEmpty() bool {
	for _, w := range b.ActiveMask {
		if w != 0 {
			return false
		}
	}
	return true
}

func (b *Brick) ActiveCount() int {
	n := 0
	for _, w := range b.ActiveMask {
		n += bits.OnesCount64(w)
	}
	return n
}

// Sector is a 4³ block of bricks stored densely packed behind a 64-bit mask.
type Sector struct {
	Coords       [3]int
	BrickMask64  uint64
	PackedBricks []*Brick
}

func NewSector(sx, sy, sz int) *Sector {
	return &Sector{Coords: [3]int{sx, sy, sz}}
}

func (s *Sector) packedIndex(flatIdx int) int {
	maskBelow := (uint64(1) << flatIdx) - 1
	return bits.OnesCount64(s.BrickMask64 & maskBelow)
}

func (s *Sector) GetBrick(bx, by, bz int) *Brick {
	flatIdx := bx + by*SectorBricks + bz*SectorBricks*SectorBricks
	if s.BrickMask64&(1<<flatIdx) == 0 {
		return nil
	}
	return s.PackedBricks[s.packedIndex(flatIdx)]
}

func (s *Sector) getOrCreateBrick(bx, by, bz int) *Brick {
	flatIdx := bx + by*SectorBricks + bz*SectorBricks*SectorBricks
	packedIdx := s.packedIndex(flatIdx)
	if s.BrickMask64&(1<<flatIdx) != 0 {
		return s.PackedBricks[packedIdx]
	}

	b := &Brick{}
	s.PackedBricks = append(s.PackedBricks, nil)
	copy(s.PackedBricks[packedIdx+1:], s.PackedBricks[packedIdx:])
	s.PackedBricks[packedIdx] = b
	s.BrickMask64 |= 1 << flatIdx
	return b
}

func (s *Sector) removeBrickIfEmpty(bx, by, bz int) {
	flatIdx := bx + by*SectorBricks + bz*SectorBricks*SectorBricks
	if s.BrickMask64&(1<<flatIdx) == 0 {
		return
	}
	packedIdx := s.packedIndex(flatIdx)
	if s.PackedBricks[packedIdx].IsEmpty() {
		s.PackedBricks = append(s.PackedBricks[:packedIdx], s.PackedBricks[packedIdx+1:]...)
		s.BrickMask64 &^= 1 << flatIdx
	}
}

func (s *Sector) IsEmpty() bool { return s.BrickMask64 == 0 }

// Sparse is a hierarchical sector -> brick -> voxel float grid.
type Sparse struct {
	GridName   string
	Map        IndexMap
	Background float32
	Sectors    map[[3]int]*Sector
	// Trilinear makes Value interpolate instead of picking the nearest voxel.
	Trilinear bool

	active    int
	bboxDirty bool
	bboxMin   [3]int
	bboxMax   [3]int
}

func NewSparse(name string, m IndexMap) *Sparse {
	return &Sparse{
		GridName:  name,
		Map:       m,
		Sectors:   make(map[[3]int]*Sector),
		bboxDirty: true,
	}
}

func split(g int) (sector, brick, voxel int) {
	sector = g / SectorSize
	local := g % SectorSize
	if local < 0 {
		local += SectorSize
		sector--
	}
	return sector, local / BrickSize, local % BrickSize
}

// Set activates voxel (x,y,z) with value v.
func (g *Sparse) Set(x, y, z int, v float32) {
	sx, bx, vx := split(x)
	sy, by, vy := split(y)
	sz, bz, vz := split(z)

	sKey := [3]int{sx, sy, sz}
	sector, ok := g.Sectors[sKey]
	if !ok {
		sector = NewSector(sx, sy, sz)
		g.Sectors[sKey] = sector
	}
	if sector.getOrCreateBrick(bx, by, bz).Set(vx, vy, vz, v) {
		g.active++
		g.bboxDirty = true
	}
}

// Clear deactivates voxel (x,y,z), dropping empty bricks and sectors.
func (g *Sparse) Clear(x, y, z int) {
	sx, bx, vx := split(x)
	sy, by, vy := split(y)
	sz, bz, vz := split(z)

	sKey := [3]int{sx, sy, sz}
	sector, ok := g.Sectors[sKey]
	if !ok {
		return
	}
	brick := sector.GetBrick(bx, by, bz)
	if brick == nil || !brick.Clear(vx, vy, vz) {
		return
	}
	g.active--
	g.bboxDirty = true
	sector.removeBrickIfEmpty(bx, by, bz)
	if sector.IsEmpty() {
		delete(g.Sectors, sKey)
	}
}

// Get returns the value at (x,y,z) and whether the voxel is active.
func (g *Sparse) Get(x, y, z int) (float32, bool) {
	sx, bx, vx := split(x)
	sy, by, vy := split(y)
	sz, bz, vz := split(z)

	sector, ok := g.Sectors[[3]int{sx, sy, sz}]
	if !ok {
		return g.Background, false
	}
	brick := sector.GetBrick(bx, by, bz)
	if brick == nil || !brick.IsActive(vx, vy, vz) {
		return g.Background, false
	}
	return brick.Values[vx][vy][vz], true
}

func (g *Sparse) Name() string          { return g.GridName }
func (g *Sparse) ActiveVoxelCount() int { return g.active }

// IndexBBox returns the inclusive index bounds of the active voxels.
func (g *Sparse) IndexBBox() ([3]int, [3]int, bool) {
	if g.active == 0 {
		return [3]int{}, [3]int{}, false
	}
	if !g.bboxDirty {
		return g.bboxMin, g.bboxMax, true
	}

	minB := [3]int{math.MaxInt, math.MaxInt, math.MaxInt}
	maxB := [3]int{math.MinInt, math.MinInt, math.MinInt}
	g.forEachActive(func(x, y, z int, _ float32) {
		p := [3]int{x, y, z}
		for i := 0; i < 3; i++ {
			minB[i] = min(minB[i], p[i])
			maxB[i] = max(maxB[i], p[i])
		}
	})
	g.bboxMin, g.bboxMax = minB, maxB
	g.bboxDirty = false
	return minB, maxB, true
}

// WorldBBox covers the full extent of every active voxel, so a single voxel
// yields a box one voxel wide rather than a point.
func (g *Sparse) WorldBBox() (mgl32.Vec3, mgl32.Vec3) {
	minI, maxI, ok := g.IndexBBox()
	if !ok {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo := mgl32.Vec3{float32(minI[0]) - 0.5, float32(minI[1]) - 0.5, float32(minI[2]) - 0.5}
	hi := mgl32.Vec3{float32(maxI[0]) + 0.5, float32(maxI[1]) + 0.5, float32(maxI[2]) + 0.5}
	return g.Map.WorldBox(lo, hi)
}

func (g *Sparse) WorldToIndex(p mgl32.Vec3) mgl32.Vec3       { return g.Map.WorldToIndex(p) }
func (g *Sparse) WorldToIndexVector(v mgl32.Vec3) mgl32.Vec3 { return g.Map.WorldToIndexVector(v) }

// Value samples the grid at a local point: the nearest voxel, or the
// trilinear blend of its neighbours when Trilinear is set.
func (g *Sparse) Value(local mgl32.Vec3) float32 {
	if g.Trilinear {
		return g.ValueTrilinear(local)
	}
	x := int(math.Floor(float64(local.X()) + 0.5))
	y := int(math.Floor(float64(local.Y()) + 0.5))
	z := int(math.Floor(float64(local.Z()) + 0.5))
	v, _ := g.Get(x, y, z)
	return v
}

func (g *Sparse) forEachActive(fn func(x, y, z int, v float32)) {
	for sKey, sector := range g.Sectors {
		ox, oy, oz := sKey[0]*SectorSize, sKey[1]*SectorSize, sKey[2]*SectorSize
		for i := 0; i < 64; i++ {
			if sector.BrickMask64&(1<<i) == 0 {
				continue
			}
			bx, by, bz := i%4, (i/4)%4, i/16
			brick := sector.GetBrick(bx, by, bz)
			if brick == nil || brick.IsEmpty() {
				continue
			}
			brickOx, brickOy, brickOz := ox+bx*BrickSize, oy+by*BrickSize, oz+bz*BrickSize
			for vz := 0; vz < BrickSize; vz++ {
				for vy := 0; vy < BrickSize; vy++ {
					for vx := 0; vx < BrickSize; vx++ {
						if brick.IsActive(vx, vy, vz) {
							fn(brickOx+vx, brickOy+vy, brickOz+vz, brick.Values[vx][vy][vz])
						}
					}
				}
			}
		}
	}
}

// ValueTrilinear interpolates the eight voxels around a local point.
// Inactive corners contribute the background value.
func (g *Sparse) ValueTrilinear(local mgl32.Vec3) float32 {
	fx, fy, fz := math.Floor(float64(local.X())), math.Floor(float64(local.Y())), math.Floor(float64(local.Z()))
	x0, y0, z0 := int(fx), int(fy), int(fz)
	tx, ty, tz := local.X()-float32(fx), local.Y()-float32(fy), local.Z()-float32(fz)

	var c [2][2][2]float32
	for dz := 0; dz < 2; dz++ {
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				c[dx][dy][dz], _ = g.Get(x0+dx, y0+dy, z0+dz)
			}
		}
	}
	lerp := func(a, b, t float32) float32 { return a + (b-a)*t }
	c00 := lerp(c[0][0][0], c[1][0][0], tx)
	c10 := lerp(c[0][1][0], c[1][1][0], tx)
	c01 := lerp(c[0][0][1], c[1][0][1], tx)
	c11 := lerp(c[0][1][1], c[1][1][1], tx)
	return lerp(lerp(c00, c10, ty), lerp(c01, c11, ty), tz)
}
