package extsort

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	sorterrors "github.com/binarysort/extsort/errors"
	"github.com/binarysort/extsort/internal/diag"
)

// Notifier is implemented by internal/notify's webhook client. It is kept
// as an interface here so the Driver does not import internal/notify
// directly (that package depends only on internal/diag's Stats type).
type Notifier interface {
	Notify(ctx context.Context, runID string, stats diag.Stats) error
}

// ProgressReporter is implemented by internal/progress's HTTP server.
type ProgressReporter interface {
	SetStats(stats diag.Stats)
	MarkReady()
}

// Config configures one end-to-end Driver run (spec.md §2 / §6).
type Config struct {
	InputPath  string
	OutputPath string
	TempDir    string

	ChunkSizeMB int
	HDDMode     bool
	Cores       int
	Channels    int
	MaxFanIn    int

	MmapReader       bool
	Checksums        bool
	MergeParallelism int

	StatsPath string
	Logger    *slog.Logger

	Progress ProgressReporter
	Webhook  Notifier
}

// Run orchestrates split-then-merge per spec.md §4.5: validate, create the
// temp directory (wiping first), run Splitter then Merger, always delete
// the temp directory afterward, then persist run statistics.
func Run(ctx context.Context, cfg Config) (diag.Stats, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	if err := validateConfig(&cfg); err != nil {
		return diag.Stats{}, err
	}

	if cfg.Progress != nil {
		cfg.Progress.MarkReady()
	}

	start := time.Now()
	sampler := diag.StartRSSSampler(200 * time.Millisecond)

	logger.Info("split phase starting", "input", cfg.InputPath, "temp_dir", cfg.TempDir)
	if err := ensureTempDir(cfg.TempDir); err != nil {
		sampler.Stop()
		return diag.Stats{}, err
	}

	runs, err := Split(ctx, SplitConfig{
		InputPath:       cfg.InputPath,
		TempDir:         cfg.TempDir,
		SorterCount:     cfg.Cores,
		ChunkSizeMB:     cfg.ChunkSizeMB,
		ChannelCapacity: cfg.Channels,
		HDDMode:         cfg.HDDMode,
		MmapReader:      cfg.MmapReader,
		Checksums:       cfg.Checksums,
	})
	if err != nil {
		os.RemoveAll(cfg.TempDir)
		sampler.Stop()
		return diag.Stats{}, err
	}
	logger.Info("split phase complete", "run_count", len(runs))

	logger.Info("merge phase starting", "max_fan_in", cfg.MaxFanIn)
	mergeErr := Merge(ctx, MergeConfig{
		Runs:             runs,
		FinalPath:        cfg.OutputPath,
		TempDir:          cfg.TempDir,
		MaxFanIn:         cfg.MaxFanIn,
		Checksums:        cfg.Checksums,
		MergeParallelism: cfg.MergeParallelism,
	})

	os.RemoveAll(cfg.TempDir)
	peakRSS := sampler.Stop()
	if mergeErr != nil {
		logger.Error("merge phase failed", "error", mergeErr)
		return diag.Stats{}, mergeErr
	}

	elapsed := time.Since(start).Seconds()
	size := outputSizeMB(cfg.OutputPath)
	avgRate := 0.0
	if elapsed > 0 {
		avgRate = size / elapsed
	}
	stats := diag.Stats{
		ElapsedSeconds: elapsed,
		PeakRSSMB:      peakRSS,
		AvgMBPerSecond: avgRate,
	}
	logger.Info("merge phase complete", "elapsed_s", stats.ElapsedSeconds, "peak_rss_mb", stats.PeakRSSMB)

	statsPath := cfg.StatsPath
	if statsPath == "" {
		statsPath = "last_run_stats.txt"
	}
	if err := diag.PersistStats(statsPath, stats); err != nil {
		logger.Warn("failed to persist run stats", "error", err)
	}

	if cfg.Progress != nil {
		cfg.Progress.SetStats(stats)
	}
	if cfg.Webhook != nil {
		if err := cfg.Webhook.Notify(ctx, runID, stats); err != nil {
			logger.Warn("completion webhook failed", "error", err)
		}
	}

	return stats, nil
}

func validateConfig(cfg *Config) error {
	if _, err := os.Stat(cfg.InputPath); err != nil {
		return sorterrors.ErrInputNotFound
	}
	outDir := filepath.Dir(cfg.OutputPath)
	if outDir == "" {
		outDir = "."
	}
	if info, err := os.Stat(outDir); err != nil || !info.IsDir() {
		return sorterrors.ErrOutputNotWritable
	}
	if cfg.ChunkSizeMB < 0 {
		return sorterrors.ErrInvalidChunkSize
	}
	if cfg.Channels < 0 {
		return sorterrors.ErrInvalidChannels
	}
	if cfg.MaxFanIn != 0 && cfg.MaxFanIn < 2 {
		return sorterrors.ErrInvalidFanIn
	}
	if cfg.Cores < 0 {
		return sorterrors.ErrInvalidCores
	}
	maxCores := runtime.NumCPU() - 1
	if maxCores < 1 {
		maxCores = 1
	}
	if cfg.Cores > maxCores {
		cfg.Cores = maxCores
	}
	if cfg.HDDMode && cfg.MmapReader {
		return sorterrors.ErrMmapRequiresSSD
	}
	return nil
}

func outputSizeMB(path string) float64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return float64(info.Size()) / (1 << 20)
}
