// Package grid holds the sparse volumetric grids consumed by the voxelizer:
// the Sampler contract, an in-memory hierarchical grid and file readers.
package grid

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrEmptyGrid reports a grid with no active voxels or a file with no grids.
	ErrEmptyGrid = errors.New("grid: empty grid")
	// ErrUnsupportedFormat is wrapped in a ReadError when no reader matches a path.
	ErrUnsupportedFormat = errors.New("grid: unsupported format")
)

// Sampler is the read side of a volumetric grid.
//
// Local space is the grid's index space: voxel (i,j,k) is centred on the
// integer point (i,j,k) and covers half a voxel on each side.
type Sampler interface {
	Name() string
	ActiveVoxelCount() int
	// WorldBBox is the world-space box enclosing every active voxel extent.
	WorldBBox() (mgl32.Vec3, mgl32.Vec3)
	WorldToIndex(p mgl32.Vec3) mgl32.Vec3
	WorldToIndexVector(v mgl32.Vec3) mgl32.Vec3
	// Value returns the scalar at a local point, or the background value
	// when the point falls on an inactive voxel.
	Value(local mgl32.Vec3) float32
}

// Set is the ordered list of grids stored in one file.
type Set []Sampler

// Last returns the last grid of the set.
func (s Set) Last() (Sampler, error) {
	if len(s) == 0 {
		return nil, ErrEmptyGrid
	}
	return s[len(s)-1], nil
}

// ReadError wraps any failure to read or decode a grid file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("grid: read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
