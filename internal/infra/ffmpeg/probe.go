package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Probe answers media metadata questions through ffprobe, plus a
// header-only decode path for still images.
type Probe struct {
	ffprobePath string
}

func NewProbe(ffprobePath string) (*Probe, error) {
	resolved, err := exec.LookPath(ffprobePath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	return &Probe{ffprobePath: resolved}, nil
}

func (p *Probe) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	return out, nil
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ffprobePacket struct {
	PtsTime string `json:"pts_time"`
	Flags   string `json:"flags"`
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
	Packets []ffprobePacket `json:"packets"`
}

// packetInfo is one demuxed video packet on the presentation timeline.
type packetInfo struct {
	pts      float64
	keyframe bool
}

// Duration returns the container duration in seconds.
func (p *Probe) Duration(ctx context.Context, path string) (float64, error) {
	out, err := p.run(ctx,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	if err != nil {
		return 0, err
	}
	return parseDuration(out)
}

// VideoDimensions reports the native width/height of the best video
// stream without decoding any frame payload.
func (p *Probe) VideoDimensions(ctx context.Context, path string) (int, int, error) {
	out, err := p.run(ctx,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		path,
	)
	if err != nil {
		return 0, 0, err
	}
	return parseStreamDimensions(out)
}

// packetTimeline lists the video stream's packets in presentation order.
func (p *Probe) packetTimeline(ctx context.Context, path string) ([]packetInfo, error) {
	out, err := p.run(ctx,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "packet=pts_time,flags",
		"-of", "json",
		path,
	)
	if err != nil {
		return nil, err
	}
	return parsePackets(out)
}

// ImageDimensions decodes only the image header.
func (p *Probe) ImageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

func parseDuration(out []byte) (float64, error) {
	var probed ffprobeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(probed.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", probed.Format.Duration, err)
	}
	return duration, nil
}

func parseStreamDimensions(out []byte) (int, int, error) {
	var probed ffprobeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return 0, 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probed.Streams) == 0 {
		return 0, 0, fmt.Errorf("no video stream found")
	}
	s := probed.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return 0, 0, fmt.Errorf("video stream has no valid dimensions")
	}
	return s.Width, s.Height, nil
}

func parsePackets(out []byte) ([]packetInfo, error) {
	var probed ffprobeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	packets := make([]packetInfo, 0, len(probed.Packets))
	for _, pkt := range probed.Packets {
		// Packets without a presentation timestamp cannot be sampled.
		pts, err := strconv.ParseFloat(pkt.PtsTime, 64)
		if err != nil {
			continue
		}
		packets = append(packets, packetInfo{
			pts:      pts,
			keyframe: strings.HasPrefix(pkt.Flags, "K"),
		})
	}

	// Demux order may differ from presentation order when B-frames are
	// present; selection scans presentation time.
	sort.Slice(packets, func(i, j int) bool { return packets[i].pts < packets[j].pts })

	return packets, nil
}
