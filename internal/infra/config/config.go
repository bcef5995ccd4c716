package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	SimilarityThreshold uint32 `env:"SIMILARITY_THRESHOLD" envDefault:"15"`
	WorkerCount         int    `env:"WORKER_COUNT"         envDefault:"3"`

	FFmpegPath  string `env:"FFMPEG_PATH"  envDefault:"ffmpeg"`
	FFprobePath string `env:"FFPROBE_PATH" envDefault:"ffprobe"`

	// TempDir is the root for per-video scratch directories; empty means
	// the OS temp directory.
	TempDir string `env:"TEMP_DIR" envDefault:""`

	OutputPath string `env:"OUTPUT_PATH" envDefault:""`

	MetricsPort  int    `env:"METRICS_PORT"  envDefault:"0"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT" envDefault:""`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
