package port

// FrameHasher computes a fixed-length perceptual fingerprint for one
// raster file.
type FrameHasher interface {
	HashFile(path string) ([]byte, error)
}
