package grid

import (
	"github.com/go-gl/mathgl/mgl32"
)

// IndexMap is the affine transform between index space and world space.
type IndexMap struct {
	indexToWorld mgl32.Mat4
	worldToIndex mgl32.Mat4
}

// NewIndexMap builds a uniform-scale map: world = origin + index*voxelSize.
func NewIndexMap(voxelSize float32, origin mgl32.Vec3) IndexMap {
	if voxelSize <= 0 {
		voxelSize = 1
	}
	m := mgl32.Translate3D(origin.X(), origin.Y(), origin.Z()).
		Mul4(mgl32.Scale3D(voxelSize, voxelSize, voxelSize))
	return NewAffineMap(m)
}

// NewAffineMap wraps an arbitrary invertible index-to-world matrix.
func NewAffineMap(indexToWorld mgl32.Mat4) IndexMap {
	return IndexMap{
		indexToWorld: indexToWorld,
		worldToIndex: indexToWorld.Inv(),
	}
}

func IdentityMap() IndexMap {
	return IndexMap{indexToWorld: mgl32.Ident4(), worldToIndex: mgl32.Ident4()}
}

func (m IndexMap) IndexToWorld(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, m.indexToWorld)
}

func (m IndexMap) WorldToIndex(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, m.worldToIndex)
}

// WorldToIndexVector maps a world offset (no translation) into index space.
func (m IndexMap) WorldToIndexVector(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformNormal(v, m.worldToIndex)
}

func (m IndexMap) IndexToWorldMatrix() mgl32.Mat4 { return m.indexToWorld }

// WorldBox returns the world AABB of an index-space box, transforming all
// eight corners so rotated maps stay conservative.
func (m IndexMap) WorldBox(minI, maxI mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	corners := [8]mgl32.Vec3{
		{minI.X(), minI.Y(), minI.Z()},
		{maxI.X(), minI.Y(), minI.Z()},
		{minI.X(), maxI.Y(), minI.Z()},
		{maxI.X(), maxI.Y(), minI.Z()},
		{minI.X(), minI.Y(), maxI.Z()},
		{maxI.X(), minI.Y(), maxI.Z()},
		{minI.X(), maxI.Y(), maxI.Z()},
		{maxI.X(), maxI.Y(), maxI.Z()},
	}

	inf := float32(1e20)
	wMin := mgl32.Vec3{inf, inf, inf}
	wMax := mgl32.Vec3{-inf, -inf, -inf}
	for _, c := range corners {
		wc := m.IndexToWorld(c)
		for i := 0; i < 3; i++ {
			wMin[i] = min(wMin[i], wc[i])
			wMax[i] = max(wMax[i], wc[i])
		}
	}
	return wMin, wMax
}
