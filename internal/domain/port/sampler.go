package port

import "context"

// SampleResult describes the frames extracted from one video.
type SampleResult struct {
	// FramePaths lists the written frame rasters in sampling order.
	FramePaths []string
	Duration   float64
}

// FrameSampler extracts representative frames from a video into
// outputDir. Implementations must fail when zero frames could be
// extracted.
type FrameSampler interface {
	SampleFrames(ctx context.Context, videoPath, outputDir string) (*SampleResult, error)
}
