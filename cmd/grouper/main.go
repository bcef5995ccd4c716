package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Aditya-PS-05/visirs/internal/domain/entity"
	"github.com/Aditya-PS-05/visirs/internal/infra/config"
	"github.com/Aditya-PS-05/visirs/internal/infra/ffmpeg"
	"github.com/Aditya-PS-05/visirs/internal/infra/metrics"
	"github.com/Aditya-PS-05/visirs/internal/infra/phash"
	"github.com/Aditya-PS-05/visirs/internal/infra/tracing"
	"github.com/Aditya-PS-05/visirs/internal/usecase"
	"github.com/Aditya-PS-05/visirs/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: grouper <manifest.json>")
		os.Exit(2)
	}
	manifestPath := os.Args[1]

	log.Info("starting visirs grouper")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	if cfg.OTLPEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(ctx)
		}
	}

	if cfg.MetricsPort > 0 {
		srv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	// ffmpeg/ffprobe are resolved once up front; this is the one-time
	// initialization of the video decoding subsystem.
	probe, err := ffmpeg.NewProbe(cfg.FFprobePath)
	fatalOnErr(err, "init ffprobe")
	sampler, err := ffmpeg.NewSampler(cfg.FFmpegPath, probe, log)
	fatalOnErr(err, "init ffmpeg")

	uc := usecase.NewGroupAssetsUseCase(
		sampler, probe, phash.NewHasher(),
		log,
		usecase.GroupAssetsConfig{
			TempDir: cfg.TempDir,
			Workers: cfg.WorkerCount,
		},
	)

	assets, err := loadManifest(manifestPath)
	fatalOnErr(err, "load manifest")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	threshold := cfg.SimilarityThreshold
	groups, err := uc.Execute(ctx, assets, usecase.Params{Threshold: &threshold})
	if err != nil {
		log.Error("grouping failed", zap.Error(err))
		os.Exit(1)
	}

	fatalOnErr(writeGroups(groups, cfg.OutputPath), "write groups")

	log.Info("visirs grouper finished", zap.Int("groups", len(groups)))
}

func loadManifest(path string) ([]entity.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var assets []entity.Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return assets, nil
}

func writeGroups(groups []entity.AssetGroup, outputPath string) error {
	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal groups: %w", err)
	}
	data = append(data, '\n')

	if outputPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
