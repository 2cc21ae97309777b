// Package config loads cmd/sorter's configuration from flags with .env
// fallbacks, in the flags-override-dotenv precedence the platform config
// loader in the wider pack uses.
package config

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
)

// SorterConfig mirrors the flag table in SPEC_FULL.md §6.1.
type SorterConfig struct {
	Input            string
	Output           string
	Temp             string
	ChunkSizeMB      int
	HDDMode          bool
	Cores            int
	Channels         int
	MaxFanIn         int
	MmapReader       bool
	Checksums        bool
	MergeParallelism int
	ProgressAddr     string
	WebhookURL       string
}

// LoadSorterConfig parses flags, falling back to .env-sourced environment
// variables for anything not given on the command line. envFile may be
// empty to skip dotenv loading entirely.
func LoadSorterConfig(args []string, envFile string) (SorterConfig, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	fs := flag.NewFlagSet("sorter", flag.ContinueOnError)
	input := fs.String("input", envOr("SORTER_INPUT", "data.txt"), "source file")
	output := fs.String("output", envOr("SORTER_OUTPUT", "result.txt"), "destination file")
	temp := fs.String("temp", envOr("SORTER_TEMP", "temp_chunks"), "scratch directory")
	chunkSize := fs.Int("chunk-size", envOrInt("SORTER_CHUNK_SIZE", 200), "per-chunk memory cap in MB")
	hddMode := fs.Bool("hdd-mode", envOrBool("SORTER_HDD_MODE", true), "serialize reads/writes for spinning disks")
	cores := fs.Int("cores", envOrInt("SORTER_CORES", 2), "sorter thread count")
	channels := fs.Int("channels", envOrInt("SORTER_CHANNELS", 2), "queue capacity")
	maxFanIn := fs.Int("max-fan-in", envOrInt("SORTER_MAX_FAN_IN", 15), "merger fan-in bound")
	mmapReader := fs.Bool("mmap-reader", envOrBool("SORTER_MMAP_READER", false), "use the mmap read backend (SSD only)")
	checksums := fs.Bool("checksums", envOrBool("SORTER_CHECKSUMS", false), "write/verify per-run checksums")
	mergeParallelism := fs.Int("merge-parallelism", envOrInt("SORTER_MERGE_PARALLELISM", 1), "concurrent batches per cascade level")
	progressAddr := fs.String("progress-addr", os.Getenv("SORTER_PROGRESS_ADDR"), "address to serve /health and /progress on")
	webhookURL := fs.String("webhook-url", os.Getenv("SORTER_WEBHOOK_URL"), "URL to POST run stats to on completion")
	// --env-file is read by cmd/sorter before this call; it is declared here
	// so the flag set accepts it.
	_ = fs.String("env-file", envFile, "optional dotenv file consulted before flags (flags win)")

	if err := fs.Parse(args); err != nil {
		return SorterConfig{}, err
	}

	return SorterConfig{
		Input:            *input,
		Output:           *output,
		Temp:             *temp,
		ChunkSizeMB:      *chunkSize,
		HDDMode:          *hddMode,
		Cores:            *cores,
		Channels:         *channels,
		MaxFanIn:         *maxFanIn,
		MmapReader:       *mmapReader,
		Checksums:        *checksums,
		MergeParallelism: *mergeParallelism,
		ProgressAddr:     *progressAddr,
		WebhookURL:       *webhookURL,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func envOrBool(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return fallback
	}
}

// GeneratorConfig mirrors cmd/generator's flags (SPEC_FULL.md §6.2).
type GeneratorConfig struct {
	Output string
	SizeGB float64
	Cores  int
	Seed   uint64
}

// LoadGeneratorConfig parses cmd/generator's flag set.
func LoadGeneratorConfig(args []string, defaultSeed uint64) (GeneratorConfig, error) {
	fs := flag.NewFlagSet("generator", flag.ContinueOnError)
	output := fs.String("output", "data.txt", "destination path")
	sizeGB := fs.Float64("size", 1.0, "target size in GB")
	cores := fs.Int("cores", 0, "unused placeholder for parity with the sorter's flag surface")
	seed := fs.Uint64("seed", defaultSeed, "seed for reproducible output")

	if err := fs.Parse(args); err != nil {
		return GeneratorConfig{}, err
	}

	return GeneratorConfig{Output: *output, SizeGB: *sizeGB, Cores: *cores, Seed: *seed}, nil
}
