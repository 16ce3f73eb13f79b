package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/volumetrics/volrt/rt/gfx"
)

func TestMipCount(t *testing.T) {
	assert.Equal(t, 1, MipCount(1, 1, 1))
	assert.Equal(t, 8, MipCount(128, 128, 128))
	assert.Equal(t, 4, MipCount(8, 2, 1))
	assert.Equal(t, 3, MipCount(5, 5, 5))
}

func TestMipChain_Averages(t *testing.T) {
	desc := gfx.VolumeDesc(2)
	data := []byte{0, 255, 0, 255, 0, 255, 0, 255}
	levels, err := MipChain(desc, data)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, Level{1, 1, 1, []byte{128}}, levels[1])
}

func TestMipChain_OddExtent(t *testing.T) {
	desc := gfx.VolumeDesc(3)
	data := make([]byte, 27)
	for i := range data {
		data[i] = 90
	}
	levels, err := MipChain(desc, data)
	require.NoError(t, err)
	require.Len(t, levels, MipCount(3, 3, 3))
	assert.Equal(t, 1, levels[1].Width)
	assert.Equal(t, []byte{90}, levels[1].Data)
}

func TestMipChain_RGBAKeepsChannels(t *testing.T) {
	desc := gfx.TextureDesc{Width: 2, Height: 1, Depth: 1, Layout: gfx.RGBA, Type: gfx.UnsignedByte, Mipmaps: true}
	levels, err := MipChain(desc, []byte{10, 0, 200, 255, 30, 0, 100, 255})
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, []byte{20, 0, 150, 255}, levels[1].Data)
}

func TestMipChain_NoMipsAndErrors(t *testing.T) {
	desc := gfx.VolumeDesc(4)
	desc.Mipmaps = false
	levels, err := MipChain(desc, make([]byte, 64))
	require.NoError(t, err)
	assert.Len(t, levels, 1)

	_, err = MipChain(gfx.VolumeDesc(4), make([]byte, 63))
	assert.Error(t, err)

	floats := gfx.TextureDesc{Width: 2, Height: 2, Depth: 2, Layout: gfx.Red, Type: gfx.Float, Mipmaps: true}
	levels, err = MipChain(floats, make([]byte, 32))
	require.NoError(t, err)
	assert.Len(t, levels, 1)

	_, err = MipChain(gfx.TextureDesc{Width: 1, Height: 1, Depth: 1, Layout: gfx.RGBA, Type: gfx.Float}, make([]byte, 16))
	assert.Error(t, err)
}
