// Package diag provides the ambient logging and run-statistics collection
// shared by the Driver and cmd/sorter: an injectable slog.Logger (global
// state per spec.md §9 — it has no effect on sort correctness) and a
// peak-RSS sampler used to populate last_run_stats.txt.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"syscall"
	"time"
)

// NewLogger returns an slog.Logger writing structured text to w, or
// slog.Default() if w is nil — the same injectable-with-fallback shape the
// pack uses for its own storage-layer loggers.
func NewLogger(w *os.File) *slog.Logger {
	if w == nil {
		return slog.Default()
	}
	return slog.New(slog.NewTextHandler(w, nil))
}

// Stats is the run summary persisted to last_run_stats.txt as
// "elapsed;peak_rss_mb;avg_mb_per_s".
type Stats struct {
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	PeakRSSMB      float64 `json:"peak_rss_mb"`
	AvgMBPerSecond float64 `json:"avg_mb_per_s"`
}

// String renders Stats in the persisted-file format.
func (s Stats) String() string {
	return fmt.Sprintf("%.3f;%.2f;%.2f", s.ElapsedSeconds, s.PeakRSSMB, s.AvgMBPerSecond)
}

// PersistStats writes Stats to path in the documented single-line format.
func PersistStats(path string, s Stats) error {
	return os.WriteFile(path, []byte(s.String()+"\n"), 0o644)
}

// RSSSampler periodically samples the process's resident set size in the
// background and tracks the observed peak, using syscall.Getrusage rather
// than runtime.ReadMemStats so sampling never triggers a stop-the-world
// pause.
type RSSSampler struct {
	peakBytes atomic.Uint64
	stop      chan struct{}
	done      chan struct{}
}

// StartRSSSampler launches a background sampling goroutine at the given
// interval. Call Stop to end it and read the observed peak.
func StartRSSSampler(interval time.Duration) *RSSSampler {
	s := &RSSSampler{stop: make(chan struct{}), done: make(chan struct{})}
	go s.run(interval)
	return s
}

func (s *RSSSampler) run(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	sample := func() {
		var ru syscall.Rusage
		if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
			return
		}
		// Linux reports Maxrss in kilobytes.
		rssBytes := uint64(ru.Maxrss) * 1024
		for {
			cur := s.peakBytes.Load()
			if rssBytes <= cur {
				return
			}
			if s.peakBytes.CompareAndSwap(cur, rssBytes) {
				return
			}
		}
	}
	sample()
	for {
		select {
		case <-ticker.C:
			sample()
		case <-s.stop:
			return
		}
	}
}

// Stop ends sampling and returns the observed peak RSS in megabytes.
func (s *RSSSampler) Stop() float64 {
	close(s.stop)
	<-s.done
	return float64(s.peakBytes.Load()) / (1 << 20)
}

// contextKey is unexported to avoid collisions across packages, matching
// the pipeline logger-injection pattern of threading a *slog.Logger through
// context rather than a global.
type contextKey struct{}

// WithLogger returns a context carrying logger for downstream stages that
// accept a context but not an explicit logger parameter.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger stashed by WithLogger, or slog.Default()
// if none was set.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
