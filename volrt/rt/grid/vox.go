package grid

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	VOXMagicNumber = "VOX "

	// maxVoxChunkSize fits an XYZI chunk of a full 256³ model.
	maxVoxChunkSize = 4 + 4*256*256*256
)

type voxVoxel struct {
	X, Y, Z, ColorIndex byte
}

type voxModel struct {
	SizeX, SizeY, SizeZ uint32
	Voxels              []voxVoxel
}

type voxPalette [256][4]byte // RGBA

// VoxOptions controls how MagicaVoxel models become density grids.
type VoxOptions struct {
	VoxelSize float32
	Origin    mgl32.Vec3
	// Trilinear sets Sparse.Trilinear on every grid read.
	Trilinear bool
}

// ReadVoxFile opens a MagicaVoxel file and converts every model to a grid.
func ReadVoxFile(path string, opts VoxOptions) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	set, err := ReadVox(bufio.NewReader(f), opts)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	for i, g := range set {
		if s, ok := g.(*Sparse); ok && s.GridName == "" {
			s.GridName = fmt.Sprintf("%s#%d", path, i)
		}
	}
	return set, nil
}

// ReadVox decodes a MagicaVoxel stream. Each model becomes one grid whose
// voxel values are the palette alpha mapped to [0,1].
func ReadVox(r io.Reader, opts VoxOptions) (Set, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if string(magic[:]) != VOXMagicNumber {
		return nil, errors.New("not a valid VOX file")
	}

	var version int32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}

	palette := defaultPalette()
	var models []voxModel

	for {
		var chunkID [4]byte
		if _, err := io.ReadFull(r, chunkID[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		var chunkSize, childrenSize int32
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &childrenSize); err != nil {
			return nil, err
		}
		if chunkSize < 0 || childrenSize < 0 {
			return nil, fmt.Errorf("chunk %q has negative size", string(chunkID[:]))
		}
		if chunkSize > maxVoxChunkSize {
			return nil, fmt.Errorf("chunk %q size %d exceeds %d bytes", string(chunkID[:]), chunkSize, maxVoxChunkSize)
		}

		// grow with the data actually present rather than the declared size
		var body bytes.Buffer
		if _, err := io.CopyN(&body, r, int64(chunkSize)); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		chunkData := body.Bytes()

		switch string(chunkID[:]) {
		case "MAIN":
			// MAIN only wraps children
			continue
		case "PACK":
			// the model count is advisory; SIZE chunks append models as they come
			if len(chunkData) < 4 {
				return nil, errors.New("PACK chunk too small")
			}
		case "SIZE":
			if len(chunkData) < 12 {
				return nil, errors.New("SIZE chunk too small")
			}
			models = append(models, voxModel{
				SizeX: binary.LittleEndian.Uint32(chunkData[0:4]),
				SizeY: binary.LittleEndian.Uint32(chunkData[4:8]),
				SizeZ: binary.LittleEndian.Uint32(chunkData[8:12]),
			})
		case "XYZI":
			if len(models) == 0 {
				return nil, errors.New("XYZI chunk before SIZE")
			}
			if len(chunkData) < 4 {
				return nil, errors.New("XYZI chunk too small")
			}
			model := &models[len(models)-1]
			numVoxels := binary.LittleEndian.Uint32(chunkData[:4])
			if uint64(len(chunkData)) < 4+uint64(numVoxels)*4 {
				return nil, errors.New("XYZI chunk data overflow")
			}
			model.Voxels = make([]voxVoxel, numVoxels)
			for i := 0; i < int(numVoxels); i++ {
				offset := 4 + i*4
				model.Voxels[i] = voxVoxel{
					X:          chunkData[offset],
					Y:          chunkData[offset+1],
					Z:          chunkData[offset+2],
					ColorIndex: chunkData[offset+3],
				}
			}
		case "RGBA":
			for i := 0; i < 255; i++ {
				offset := i * 4
				if offset+3 >= len(chunkData) {
					break
				}
				copy(palette[i+1][:], chunkData[offset:offset+4])
			}
		}
	}

	if len(models) == 0 {
		return nil, ErrEmptyGrid
	}

	m := NewIndexMap(opts.VoxelSize, opts.Origin)
	set := make(Set, 0, len(models))
	for _, model := range models {
		g := NewSparse("", m)
		g.Trilinear = opts.Trilinear
		for _, v := range model.Voxels {
			g.Set(int(v.X), int(v.Y), int(v.Z), float32(palette[v.ColorIndex][3])/255)
		}
		set = append(set, g)
	}
	return set, nil
}

func defaultPalette() voxPalette {
	var palette voxPalette
	for i := range palette {
		palette[i] = [4]uint8{255, 255, 255, 255}
	}
	return palette
}
