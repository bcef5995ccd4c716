package usecase

import (
	"fmt"
	"math/bits"

	"github.com/Aditya-PS-05/visirs/internal/domain/entity"
)

// DefaultThreshold is the hamming distance cutoff used when the caller
// does not supply one. Roughly 23% of the 64-bit hash space, which
// balances re-encode tolerance against false merges.
const DefaultThreshold uint32 = 15

// HammingDistance counts differing bits between two equal-length hashes.
func HammingDistance(a, b []byte) (uint32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("hash length mismatch: %d vs %d", len(a), len(b))
	}

	var distance uint32
	for i := range a {
		distance += uint32(bits.OnesCount8(a[i] ^ b[i]))
	}
	return distance, nil
}

// AreSimilar reports whether two hashed assets represent the same visual
// content. Videos never match images. Frames are paired by position over
// the overlapping prefix; every pair must land strictly under the
// threshold. A corrupted comparison (mismatched hash lengths) degrades
// to "not similar" rather than failing the caller.
func AreSimilar(a, b entity.HashedAsset, threshold uint32) bool {
	if a.Asset.IsVideo != b.Asset.IsVideo {
		return false
	}

	overlap := len(a.Frames)
	if len(b.Frames) < overlap {
		overlap = len(b.Frames)
	}
	if overlap == 0 {
		return false
	}

	for i := 0; i < overlap; i++ {
		distance, err := HammingDistance(a.Frames[i].Hash, b.Frames[i].Hash)
		if err != nil {
			return false
		}
		if distance >= threshold {
			return false
		}
	}
	return true
}
