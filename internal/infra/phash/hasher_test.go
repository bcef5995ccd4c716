package phash

import (
	"image"
	"image/color"
	"image/png"
	"math/bits"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradient paints a horizontal brightness ramp so hashes carry real
// structure instead of a uniform block.
func gradient(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(255 * x / width)
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// checkerboard paints alternating tiles, visually far from a gradient.
func checkerboard(width, height, tile int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/tile+y/tile)%2 == 0 {
				img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{A: 255})
			}
		}
	}
	return img
}

func TestHashImageLengthAndDeterminism(t *testing.T) {
	img := gradient(256, 256)

	h1, err := HashImage(img)
	require.NoError(t, err)
	h2, err := HashImage(img)
	require.NoError(t, err)

	assert.Len(t, h1, HashSize)
	assert.Equal(t, h1, h2)
}

func TestHashImageSurvivesResize(t *testing.T) {
	// The same artwork at different sizes must hash identically close
	// after cover-crop normalization.
	big, err := HashImage(gradient(512, 512))
	require.NoError(t, err)
	small, err := HashImage(gradient(128, 128))
	require.NoError(t, err)

	distance := 0
	for i := range big {
		distance += bits.OnesCount8(big[i] ^ small[i])
	}
	assert.LessOrEqual(t, distance, 2)
}

func TestHashImageDistinguishesContent(t *testing.T) {
	a, err := HashImage(gradient(256, 256))
	require.NoError(t, err)
	b, err := HashImage(checkerboard(256, 256, 32))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestNormalizeGeometry(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"wide", 400, 200},
		{"tall", 200, 400},
		{"square", 300, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := normalize(gradient(tt.width, tt.height))
			assert.Equal(t, canonicalSize, out.Bounds().Dx())
			assert.Equal(t, canonicalSize, out.Bounds().Dy())
		})
	}
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, gradient(128, 64)))
	require.NoError(t, f.Close())

	hasher := NewHasher()
	hash, err := hasher.HashFile(path)
	require.NoError(t, err)
	assert.Len(t, hash, HashSize)

	_, err = hasher.HashFile(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}
