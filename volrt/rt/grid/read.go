package grid

import (
	"path/filepath"
	"strings"
)

// ReadFile loads every grid stored at path, choosing the reader by extension.
// Failures are returned as *ReadError. A file holding no grids yields
// ErrEmptyGrid (wrapped).
func ReadFile(path string, opts VoxOptions) (Set, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vox":
		return ReadVoxFile(path, opts)
	default:
		return nil, &ReadError{Path: path, Err: ErrUnsupportedFormat}
	}
}
