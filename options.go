package extsort

// SplitConfig configures the split phase (spec.md §4.1).
type SplitConfig struct {
	InputPath       string
	TempDir         string
	SorterCount     int
	ChunkSizeMB     int
	ChannelCapacity int
	HDDMode         bool
	MmapReader      bool
	Checksums       bool
}

// defaultSplitConfig fills in the zero-value fields of cfg with spec.md
// §4.1 and §6's documented defaults, given the number of usable CPUs.
func defaultSplitConfig(cfg SplitConfig, cpuCount int) SplitConfig {
	if cfg.ChunkSizeMB == 0 {
		cfg.ChunkSizeMB = 200
	}
	if cfg.ChannelCapacity == 0 {
		if cfg.ChunkSizeMB >= 200 {
			cfg.ChannelCapacity = 2
		} else {
			cfg.ChannelCapacity = 4
		}
	}
	if cfg.SorterCount <= 0 {
		if cfg.ChunkSizeMB >= 200 {
			cfg.SorterCount = 4
		} else {
			cfg.SorterCount = max(1, cpuCount-2)
		}
	}
	return cfg
}

// MergeConfig configures the merge phase (spec.md §4.2).
type MergeConfig struct {
	Runs              []string
	FinalPath         string
	TempDir           string
	MaxFanIn          int
	ReadBufferSize    int
	WriteBufferSize   int
	Checksums         bool
	MergeParallelism  int
}

// defaultMergeConfig fills in the zero-value fields with spec.md §4.2's
// documented defaults.
func defaultMergeConfig(cfg MergeConfig) MergeConfig {
	if cfg.MaxFanIn == 0 {
		cfg.MaxFanIn = 15
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = chunkStreamReadBuffer
	}
	if cfg.WriteBufferSize <= 0 {
		cfg.WriteBufferSize = 16 << 20
	}
	if cfg.MergeParallelism <= 0 {
		cfg.MergeParallelism = 1
	}
	return cfg
}
