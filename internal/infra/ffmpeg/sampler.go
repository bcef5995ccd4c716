package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Aditya-PS-05/visirs/internal/domain/port"
)

// Sampler extracts representative frames from videos. It probes the
// packet timeline once per video, selects one frame near each target
// timestamp, and materializes the selected frames as RGB PNGs through
// ffmpeg.
type Sampler struct {
	ffmpegPath string
	probe      *Probe
	logger     *zap.Logger
}

func NewSampler(ffmpegPath string, probe *Probe, logger *zap.Logger) (*Sampler, error) {
	resolved, err := exec.LookPath(ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	return &Sampler{ffmpegPath: resolved, probe: probe, logger: logger}, nil
}

// sampleInterval picks the spacing between target timestamps. The exact
// equality on 10.0 is intentional: ten-second spots get denser sampling
// than the general short-video bucket.
func sampleInterval(duration float64) float64 {
	switch {
	case duration == 10.0:
		return 1.5
	case duration <= 30.0:
		return 3.0
	case duration <= 60.0:
		return 4.0
	default:
		return 5.0
	}
}

// targetTimes generates sampling targets from 0.0 up to (exclusive) the
// duration. A very short video still yields the single target 0.0.
func targetTimes(duration, interval float64) []float64 {
	var times []float64
	for t := 0.0; t < duration; t += interval {
		times = append(times, t)
	}
	return times
}

// selectFrame walks the packet timeline the way a decoder would after a
// seek: position at the last keyframe at or before target, then scan
// forward and accept the first frame whose presentation time is within
// tolerance of the target. Returns false when no frame qualifies.
func selectFrame(packets []packetInfo, target, tolerance float64) (float64, bool) {
	start := 0
	for i, pkt := range packets {
		if pkt.pts > target {
			break
		}
		if pkt.keyframe {
			start = i
		}
	}

	for _, pkt := range packets[start:] {
		if math.Abs(pkt.pts-target) < tolerance {
			return pkt.pts, true
		}
		if pkt.pts >= target+tolerance {
			break
		}
	}
	return 0, false
}

// SampleFrames extracts frames for each target timestamp into outputDir.
// Individual targets may silently yield nothing; zero frames across all
// targets is an error.
func (s *Sampler) SampleFrames(ctx context.Context, videoPath, outputDir string) (*port.SampleResult, error) {
	duration, err := s.probe.Duration(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("probe duration: %w", err)
	}

	interval := sampleInterval(duration)
	targets := targetTimes(duration, interval)

	s.logger.Debug("sampling video",
		zap.String("path", videoPath),
		zap.Float64("duration", duration),
		zap.Float64("interval", interval),
		zap.Int("targets", len(targets)),
	)

	packets, err := s.probe.packetTimeline(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("probe packet timeline: %w", err)
	}

	tolerance := interval / 2.0

	var framePaths []string
	for idx, target := range targets {
		pts, ok := selectFrame(packets, target, tolerance)
		if !ok {
			s.logger.Debug("no frame within tolerance of target",
				zap.Int("target_index", idx),
				zap.Float64("target", target),
			)
			continue
		}

		framePath := filepath.Join(outputDir, fmt.Sprintf("frame_%d.png", idx))
		if err := s.extractFrame(ctx, videoPath, pts, framePath); err != nil {
			return nil, fmt.Errorf("extract frame %d at %.2fs: %w", idx, pts, err)
		}
		framePaths = append(framePaths, framePath)
	}

	if len(framePaths) == 0 {
		return nil, fmt.Errorf("no frames extracted from video")
	}

	s.logger.Debug("frames extracted",
		zap.String("path", videoPath),
		zap.Int("count", len(framePaths)),
	)

	return &port.SampleResult{
		FramePaths: framePaths,
		Duration:   duration,
	}, nil
}

// extractFrame decodes the single frame at pts and writes it as an
// RGB24 PNG.
func (s *Sampler) extractFrame(ctx context.Context, videoPath string, pts float64, outputPath string) error {
	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-ss", fmt.Sprintf("%.6f", pts),
		"-i", videoPath,
		"-frames:v", "1",
		"-pix_fmt", "rgb24",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}
	return nil
}
