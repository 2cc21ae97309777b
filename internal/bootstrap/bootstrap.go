// Package bootstrap wires cmd/sorter's components together with a dig
// container, the same container.Provide/container.Invoke shape the wider
// pack uses for its own service wiring.
package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/dig"

	"github.com/binarysort/extsort"
	"github.com/binarysort/extsort/internal/config"
	"github.com/binarysort/extsort/internal/diag"
	"github.com/binarysort/extsort/internal/notify"
	"github.com/binarysort/extsort/internal/progress"
)

// Run builds the dig container for one CLI invocation and executes the
// Driver, returning its final stats.
func Run(ctx context.Context, args []string, envFile string) (diag.Stats, error) {
	container := dig.New()

	constructors := []interface{}{
		func() (config.SorterConfig, error) {
			return config.LoadSorterConfig(args, envFile)
		},
		newLogger,
		newProgressServer,
		newWebhookClient,
		newDriverConfig,
	}
	for _, ctor := range constructors {
		if err := container.Provide(ctor); err != nil {
			return diag.Stats{}, err
		}
	}

	var stats diag.Stats
	err := container.Invoke(func(cfg extsort.Config, prog *progress.Server) error {
		if prog != nil {
			go prog.Run()
		}
		s, runErr := extsort.Run(ctx, cfg)
		stats = s
		return runErr
	})
	return stats, err
}

func newLogger(cfg config.SorterConfig) *slog.Logger {
	return diag.NewLogger(nil)
}

func newProgressServer(cfg config.SorterConfig) *progress.Server {
	if cfg.ProgressAddr == "" {
		return nil
	}
	return progress.New(cfg.ProgressAddr)
}

func newWebhookClient(cfg config.SorterConfig) *notify.WebhookClient {
	if cfg.WebhookURL == "" {
		return nil
	}
	return notify.New(cfg.WebhookURL)
}

func newDriverConfig(cfg config.SorterConfig, logger *slog.Logger, prog *progress.Server, hook *notify.WebhookClient) extsort.Config {
	var progressReporter extsort.ProgressReporter
	if prog != nil {
		progressReporter = prog
	}
	var notifier extsort.Notifier
	if hook != nil {
		notifier = hook
	}
	return extsort.Config{
		InputPath:        cfg.Input,
		OutputPath:       cfg.Output,
		TempDir:          cfg.Temp,
		ChunkSizeMB:      cfg.ChunkSizeMB,
		HDDMode:          cfg.HDDMode,
		Cores:            cfg.Cores,
		Channels:         cfg.Channels,
		MaxFanIn:         cfg.MaxFanIn,
		MmapReader:       cfg.MmapReader,
		Checksums:        cfg.Checksums,
		MergeParallelism: cfg.MergeParallelism,
		Logger:           logger,
		Progress:         progressReporter,
		Webhook:          notifier,
	}
}
