package usecase

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Aditya-PS-05/visirs/internal/domain/entity"
	"github.com/Aditya-PS-05/visirs/internal/domain/port"
	"github.com/Aditya-PS-05/visirs/internal/infra/metrics"
)

// GroupAssetsUseCase hashes every input asset and partitions the list
// into groups of visually equivalent content.
type GroupAssetsUseCase struct {
	sampler port.FrameSampler
	prober  port.DimensionProber
	hasher  port.FrameHasher
	logger  *zap.Logger
	tempDir string
	workers int
}

type GroupAssetsConfig struct {
	// TempDir is the root under which per-video scratch directories are
	// created. Empty means the OS default.
	TempDir string
	// Workers bounds concurrent asset hashing. Values below 1 are
	// treated as 1 (strictly sequential processing).
	Workers int
}

// Params tunes a single grouping call.
type Params struct {
	// Threshold overrides DefaultThreshold when non-nil. An explicit 0
	// is honored (nothing groups, since comparison requires a distance
	// strictly below the threshold).
	Threshold *uint32
}

func NewGroupAssetsUseCase(
	sampler port.FrameSampler,
	prober port.DimensionProber,
	hasher port.FrameHasher,
	logger *zap.Logger,
	cfg GroupAssetsConfig,
) *GroupAssetsUseCase {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &GroupAssetsUseCase{
		sampler: sampler,
		prober:  prober,
		hasher:  hasher,
		logger:  logger,
		tempDir: cfg.TempDir,
		workers: workers,
	}
}

// Execute returns a partition of assets: every input asset appears in
// exactly one group, groups ordered by first anchor encounter. The
// first unrecoverable per-asset failure aborts the whole call; there is
// no partial success.
func (uc *GroupAssetsUseCase) Execute(ctx context.Context, assets []entity.Asset, params Params) ([]entity.AssetGroup, error) {
	threshold := DefaultThreshold
	if params.Threshold != nil {
		threshold = *params.Threshold
	}

	if len(assets) == 0 {
		return []entity.AssetGroup{}, nil
	}

	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "GroupAssetsUseCase.Execute")
	defer span.End()
	span.SetAttributes(
		attribute.Int("assets.count", len(assets)),
		attribute.Int("threshold", int(threshold)),
	)

	uc.logger.Info("processing assets for visual grouping",
		zap.Int("count", len(assets)),
		zap.Uint32("threshold", threshold),
	)

	hashStart := time.Now()
	hashed, err := uc.hashAll(ctx, assets)
	if err != nil {
		return nil, err
	}
	metrics.StageDuration.WithLabelValues("hash").Observe(time.Since(hashStart).Seconds())

	groupStart := time.Now()
	_, groupSpan := tracer.Start(ctx, "build_groups")
	groups := buildGroups(hashed, threshold)
	groupSpan.End()
	metrics.StageDuration.WithLabelValues("group").Observe(time.Since(groupStart).Seconds())
	metrics.GroupsCreatedTotal.Add(float64(len(groups)))

	uc.logger.Info("created visual groups",
		zap.Int("groups", len(groups)),
		zap.Int("assets", len(assets)),
	)

	return groups, nil
}

// hashAll processes assets concurrently but delivers results in input
// order. The first failure cancels the remaining work and is returned
// wrapped with the failing asset's identity.
func (uc *GroupAssetsUseCase) hashAll(ctx context.Context, assets []entity.Asset) ([]entity.HashedAsset, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hashed := make([]entity.HashedAsset, len(assets))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for w := 0; w < uc.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metrics.ActiveWorkers.Inc()
			defer metrics.ActiveWorkers.Dec()

			for i := range jobs {
				result, err := uc.processAsset(ctx, assets[i])
				if err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("process asset %s (%s): %w", assets[i].ID, assets[i].Name, err)
						cancel()
					})
					return
				}
				hashed[i] = result
			}
		}()
	}

	for i := range assets {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return hashed, nil
}

// processAsset produces the HashedAsset for one input. Videos get a
// scoped scratch directory that lives until their frames are hashed and
// is removed on every exit path.
func (uc *GroupAssetsUseCase) processAsset(ctx context.Context, asset entity.Asset) (entity.HashedAsset, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "process_asset")
	defer span.End()
	span.SetAttributes(
		attribute.String("asset.id", asset.ID),
		attribute.Bool("asset.is_video", asset.IsVideo),
	)

	log := uc.logger.With(zap.String("asset_id", asset.ID), zap.String("asset_name", asset.Name))
	log.Debug("processing asset", zap.Bool("is_video", asset.IsVideo))

	var (
		framePaths    []string
		width, height int
	)

	if asset.IsVideo {
		scratchDir, err := os.MkdirTemp(uc.tempDir, "visirs-frames-*")
		if err != nil {
			return entity.HashedAsset{}, fmt.Errorf("create scratch dir: %w", err)
		}
		defer os.RemoveAll(scratchDir)

		sampled, err := uc.sampler.SampleFrames(ctx, asset.Path, scratchDir)
		if err != nil {
			return entity.HashedAsset{}, fmt.Errorf("sample frames: %w", err)
		}
		framePaths = sampled.FramePaths
		metrics.FramesSampledTotal.Add(float64(len(framePaths)))

		width, height, err = uc.prober.VideoDimensions(ctx, asset.Path)
		if err != nil {
			return entity.HashedAsset{}, fmt.Errorf("probe video dimensions: %w", err)
		}

		return uc.hashFrames(asset, framePaths, width, height)
	}

	framePaths = []string{asset.Path}
	width, height, err := uc.prober.ImageDimensions(asset.Path)
	if err != nil {
		return entity.HashedAsset{}, fmt.Errorf("probe image dimensions: %w", err)
	}

	return uc.hashFrames(asset, framePaths, width, height)
}

// hashFrames runs while any scratch directory backing framePaths is
// still alive.
func (uc *GroupAssetsUseCase) hashFrames(asset entity.Asset, framePaths []string, width, height int) (entity.HashedAsset, error) {
	frames := make([]entity.FrameData, 0, len(framePaths))
	for i, framePath := range framePaths {
		hash, err := uc.hasher.HashFile(framePath)
		if err != nil {
			return entity.HashedAsset{}, fmt.Errorf("hash frame %d: %w", i, err)
		}
		frames = append(frames, entity.FrameData{Number: i, Hash: hash})
	}

	assetType := "image"
	if asset.IsVideo {
		assetType = "video"
	}
	metrics.AssetsProcessedTotal.WithLabelValues(assetType).Inc()

	return entity.HashedAsset{
		Asset:       asset,
		Frames:      frames,
		AspectRatio: float64(width) / float64(height),
		Width:       width,
		Height:      height,
	}, nil
}

// buildGroups partitions hashed assets with a single greedy pass: each
// still-unassigned asset anchors a new group and claims every later
// unassigned asset similar to it. Candidates are compared against the
// anchor only, never against other members, so similarity does not
// chain transitively.
func buildGroups(hashed []entity.HashedAsset, threshold uint32) []entity.AssetGroup {
	groups := make([]entity.AssetGroup, 0)
	assigned := make(map[string]struct{}, len(hashed))

	for i := range hashed {
		if _, ok := assigned[hashed[i].Asset.ID]; ok {
			continue
		}

		group := entity.NewAssetGroup(BaseName(hashed[i].Asset.Name), hashed[i].Asset)
		assigned[hashed[i].Asset.ID] = struct{}{}

		for j := i + 1; j < len(hashed); j++ {
			if _, ok := assigned[hashed[j].Asset.ID]; ok {
				continue
			}

			metrics.ComparisonsTotal.Inc()
			if AreSimilar(hashed[i], hashed[j], threshold) {
				group.Assets = append(group.Assets, hashed[j].Asset)
				assigned[hashed[j].Asset.ID] = struct{}{}
			}
		}

		groups = append(groups, group)
	}

	return groups
}
