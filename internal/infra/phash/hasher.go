// Package phash computes fixed-length perceptual fingerprints for
// raster images. Frames are normalized to a canonical centered square
// before hashing so the same creative re-exported at different sizes or
// aspect ratios hashes close to itself.
package phash

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
)

// canonicalSize is the edge length every frame is resized to before
// hashing.
const canonicalSize = 256

// HashSize is the fingerprint length in bytes (8x8 block-mean grid,
// one bit per block).
const HashSize = 8

type Hasher struct{}

func NewHasher() *Hasher {
	return &Hasher{}
}

// HashFile opens a raster file and returns its perceptual fingerprint.
func (h *Hasher) HashFile(path string) ([]byte, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raster: %w", err)
	}
	return HashImage(img)
}

// HashImage fingerprints an already decoded image. Identical pixel
// content always yields identical bytes.
func HashImage(img image.Image) ([]byte, error) {
	hash, err := goimagehash.AverageHash(normalize(img))
	if err != nil {
		return nil, fmt.Errorf("compute average hash: %w", err)
	}

	buf := make([]byte, HashSize)
	binary.BigEndian.PutUint64(buf, hash.GetHash())
	return buf, nil
}

// normalize applies the cover crop: keep a centered square whose side is
// the smaller dimension, then resize to the canonical size with Lanczos
// resampling. Wider-than-square images lose their left/right edges,
// taller ones their top/bottom.
func normalize(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	side := width
	if height < width {
		side = height
	}

	cropped := imaging.CropCenter(img, side, side)
	return imaging.Resize(cropped, canonicalSize, canonicalSize, imaging.Lanczos)
}
