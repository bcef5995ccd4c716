package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aditya-PS-05/visirs/internal/domain/entity"
	"github.com/Aditya-PS-05/visirs/internal/domain/port"
)

type stubSampler struct {
	frameCount int
	lastOutDir string
	err        error
}

func (s *stubSampler) SampleFrames(ctx context.Context, videoPath, outputDir string) (*port.SampleResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastOutDir = outputDir
	paths := make([]string, s.frameCount)
	for i := range paths {
		paths[i] = filepath.Join(outputDir, fmt.Sprintf("frame_%d.png", i))
	}
	return &port.SampleResult{FramePaths: paths, Duration: 12.0}, nil
}

type stubProber struct {
	width, height int
}

func (p *stubProber) VideoDimensions(ctx context.Context, path string) (int, int, error) {
	return p.width, p.height, nil
}

func (p *stubProber) ImageDimensions(path string) (int, int, error) {
	return p.width, p.height, nil
}

type stubHasher struct {
	hashes map[string][]byte
	errFor string
}

func (h *stubHasher) HashFile(path string) ([]byte, error) {
	if h.errFor != "" && path == h.errFor {
		return nil, errors.New("unreadable raster")
	}
	if hash, ok := h.hashes[path]; ok {
		return hash, nil
	}
	return make([]byte, 8), nil
}

// distinctHash encodes k so any two distinct values are at least 16 bits
// apart, comfortably above the default threshold.
func distinctHash(k int) []byte {
	h := make([]byte, 8)
	for bit := 0; bit < 4; bit++ {
		if k&(1<<bit) != 0 {
			h[2*bit] = 0xFF
			h[2*bit+1] = 0xFF
		}
	}
	return h
}

func newTestUseCase(t *testing.T, sampler port.FrameSampler, prober port.DimensionProber, hasher port.FrameHasher, workers int) *GroupAssetsUseCase {
	t.Helper()
	return NewGroupAssetsUseCase(sampler, prober, hasher, zap.NewNop(), GroupAssetsConfig{
		TempDir: t.TempDir(),
		Workers: workers,
	})
}

func TestExecuteEmptyInput(t *testing.T) {
	uc := newTestUseCase(t, &stubSampler{}, &stubProber{width: 100, height: 100}, &stubHasher{}, 1)

	groups, err := uc.Execute(context.Background(), nil, Params{})
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestExecuteSingleAsset(t *testing.T) {
	uc := newTestUseCase(t, &stubSampler{}, &stubProber{width: 100, height: 100}, &stubHasher{}, 1)

	assets := []entity.Asset{{ID: "a1", Name: "ad.png", Path: "/img/ad.png"}}
	groups, err := uc.Execute(context.Background(), assets, Params{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "ad", groups[0].Name)
	assert.NotEmpty(t, groups[0].ID)
	require.Len(t, groups[0].Assets, 1)
	assert.Equal(t, "a1", groups[0].Assets[0].ID)
}

func TestExecutePartitionProperty(t *testing.T) {
	hasher := &stubHasher{hashes: map[string][]byte{}}
	var assets []entity.Asset
	for i := 0; i < 9; i++ {
		path := fmt.Sprintf("/img/creative_%d.png", i)
		assets = append(assets, entity.Asset{
			ID:   fmt.Sprintf("id-%d", i),
			Name: fmt.Sprintf("creative_%d.png", i),
			Path: path,
		})
		// Three clusters of three: assets sharing i/3 hash together.
		hasher.hashes[path] = distinctHash(i / 3)
	}

	uc := newTestUseCase(t, &stubSampler{}, &stubProber{width: 64, height: 64}, hasher, 4)

	groups, err := uc.Execute(context.Background(), assets, Params{})
	require.NoError(t, err)
	assert.Len(t, groups, 3)

	seen := map[string]int{}
	for _, g := range groups {
		for _, a := range g.Assets {
			seen[a.ID]++
		}
	}
	require.Len(t, seen, len(assets))
	for _, a := range assets {
		assert.Equal(t, 1, seen[a.ID], "asset %s must appear exactly once", a.ID)
	}

	// Groups appear in anchor encounter order.
	assert.Equal(t, "id-0", groups[0].Assets[0].ID)
	assert.Equal(t, "id-3", groups[1].Assets[0].ID)
	assert.Equal(t, "id-6", groups[2].Assets[0].ID)
}

func TestExecutePropagatesAssetFailure(t *testing.T) {
	hasher := &stubHasher{errFor: "/img/broken.png"}
	uc := newTestUseCase(t, &stubSampler{}, &stubProber{width: 10, height: 10}, hasher, 2)

	assets := []entity.Asset{
		{ID: "ok", Name: "ok.png", Path: "/img/ok.png"},
		{ID: "bad", Name: "broken.png", Path: "/img/broken.png"},
		{ID: "ok2", Name: "ok2.png", Path: "/img/ok2.png"},
	}

	groups, err := uc.Execute(context.Background(), assets, Params{})
	require.Error(t, err)
	assert.Nil(t, groups)
	assert.Contains(t, err.Error(), "bad")
	assert.Contains(t, err.Error(), "hash frame")
}

func TestProcessAssetVideo(t *testing.T) {
	sampler := &stubSampler{frameCount: 3}
	uc := newTestUseCase(t, sampler, &stubProber{width: 1920, height: 1080}, &stubHasher{}, 1)

	asset := entity.Asset{ID: "v1", Name: "spot.mp4", Path: "/vid/spot.mp4", IsVideo: true}
	hashed, err := uc.processAsset(context.Background(), asset)
	require.NoError(t, err)

	assert.Equal(t, 1920, hashed.Width)
	assert.Equal(t, 1080, hashed.Height)
	assert.InDelta(t, 1920.0/1080.0, hashed.AspectRatio, 1e-9)

	require.Len(t, hashed.Frames, 3)
	for i, f := range hashed.Frames {
		assert.Equal(t, i, f.Number)
		assert.Len(t, f.Hash, 8)
	}

	// The scratch directory is released once hashing completed.
	require.NotEmpty(t, sampler.lastOutDir)
	_, statErr := os.Stat(sampler.lastOutDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProcessAssetImage(t *testing.T) {
	sampler := &stubSampler{}
	uc := newTestUseCase(t, sampler, &stubProber{width: 640, height: 640}, &stubHasher{}, 1)

	asset := entity.Asset{ID: "i1", Name: "banner.png", Path: "/img/banner.png"}
	hashed, err := uc.processAsset(context.Background(), asset)
	require.NoError(t, err)

	// Images are a single frame and never allocate scratch storage.
	require.Len(t, hashed.Frames, 1)
	assert.Equal(t, 0, hashed.Frames[0].Number)
	assert.Empty(t, sampler.lastOutDir)
	assert.InDelta(t, 1.0, hashed.AspectRatio, 1e-9)
}

func TestBuildGroupsGreedyAnchorLinkage(t *testing.T) {
	// A and B are close, B and C are close, but A and C are far apart.
	// C is compared only against the anchor A, so it opens its own group
	// even though it resembles the member B.
	zeros := make([]byte, 8)
	mid := make([]byte, 8)
	far := make([]byte, 8)
	for i := 0; i < 10; i++ {
		mid[i/8] |= 1 << (i % 8)
	}
	for i := 0; i < 20; i++ {
		far[i/8] |= 1 << (i % 8)
	}

	a := hashedAsset("A", false, zeros)
	b := hashedAsset("B", false, mid)
	c := hashedAsset("C", false, far)

	require.True(t, AreSimilar(a, b, DefaultThreshold))
	require.True(t, AreSimilar(b, c, DefaultThreshold))
	require.False(t, AreSimilar(a, c, DefaultThreshold))

	groups := buildGroups([]entity.HashedAsset{a, b, c}, DefaultThreshold)
	require.Len(t, groups, 2)

	assert.Equal(t, []string{"A", "B"}, memberIDs(groups[0]))
	assert.Equal(t, []string{"C"}, memberIDs(groups[1]))
}

func TestBuildGroupsUniqueIDs(t *testing.T) {
	a := hashedAsset("A", false, distinctHash(1))
	b := hashedAsset("B", false, distinctHash(2))

	groups := buildGroups([]entity.HashedAsset{a, b}, DefaultThreshold)
	require.Len(t, groups, 2)
	assert.NotEqual(t, groups[0].ID, groups[1].ID)
}

func memberIDs(g entity.AssetGroup) []string {
	ids := make([]string, len(g.Assets))
	for i, a := range g.Assets {
		ids[i] = a.ID
	}
	return ids
}
