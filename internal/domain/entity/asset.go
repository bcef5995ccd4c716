package entity

import (
	"github.com/google/uuid"
)

// Asset is a caller-supplied media file. The pipeline only reads it.
type Asset struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	MimeType string `json:"mime_type"`
	IsVideo  bool   `json:"is_video"`
}

// FrameData is one sampled frame's perceptual hash. Number is the
// position within the successfully extracted frames, starting at 0.
type FrameData struct {
	Number int
	Hash   []byte
}

// HashedAsset is the transient per-asset hashing result consumed by the
// grouping pass. Frames is never empty for a successfully processed
// asset; images carry exactly one frame.
type HashedAsset struct {
	Asset       Asset
	Frames      []FrameData
	AspectRatio float64
	Width       int
	Height      int
}

// AssetGroup is one cluster of visually equivalent assets. The first
// member is the anchor whose filename seeded Name.
type AssetGroup struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Assets []Asset `json:"assets"`
}

// NewAssetGroup opens a group around its anchor asset.
func NewAssetGroup(name string, anchor Asset) AssetGroup {
	return AssetGroup{
		ID:     uuid.New().String(),
		Name:   name,
		Assets: []Asset{anchor},
	}
}
