package diag

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStatsStringFormat(t *testing.T) {
	s := Stats{ElapsedSeconds: 1.5, PeakRSSMB: 200.25, AvgMBPerSecond: 66.666}
	got := s.String()
	want := "1.500;200.25;66.67"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestPersistStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.txt")
	s := Stats{ElapsedSeconds: 2, PeakRSSMB: 10, AvgMBPerSecond: 5}
	if err := PersistStats(path, s); err != nil {
		t.Fatalf("PersistStats: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.TrimSpace(string(data)) != s.String() {
		t.Fatalf("persisted content = %q, want %q", data, s.String())
	}
}

func TestRSSSamplerReportsNonzeroPeak(t *testing.T) {
	s := StartRSSSampler(5 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	peak := s.Stop()
	if peak <= 0 {
		t.Fatalf("expected a positive peak RSS sample, got %f", peak)
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	base := context.Background()
	if l := FromContext(base); l != slog.Default() {
		t.Error("FromContext on a bare context should fall back to slog.Default()")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := WithLogger(base, logger)
	if got := FromContext(ctx); got != logger {
		t.Error("FromContext did not return the logger stashed by WithLogger")
	}
}

func TestNewLoggerFallsBackToDefault(t *testing.T) {
	if got := NewLogger(nil); got != slog.Default() {
		t.Error("NewLogger(nil) should return slog.Default()")
	}
}
