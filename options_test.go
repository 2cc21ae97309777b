package extsort

import "testing"

func TestDefaultSplitConfigLargeChunk(t *testing.T) {
	cfg := defaultSplitConfig(SplitConfig{}, 8)
	if cfg.ChunkSizeMB != 200 {
		t.Errorf("ChunkSizeMB = %d, want 200", cfg.ChunkSizeMB)
	}
	if cfg.ChannelCapacity != 2 {
		t.Errorf("ChannelCapacity = %d, want 2", cfg.ChannelCapacity)
	}
	if cfg.SorterCount != 4 {
		t.Errorf("SorterCount = %d, want 4", cfg.SorterCount)
	}
}

func TestDefaultSplitConfigSmallChunk(t *testing.T) {
	cfg := defaultSplitConfig(SplitConfig{ChunkSizeMB: 50}, 8)
	if cfg.ChannelCapacity != 4 {
		t.Errorf("ChannelCapacity = %d, want 4", cfg.ChannelCapacity)
	}
	if cfg.SorterCount != 6 {
		t.Errorf("SorterCount = %d, want max(1, 8-2) = 6", cfg.SorterCount)
	}
}

func TestDefaultSplitConfigSmallChunkLowCPU(t *testing.T) {
	cfg := defaultSplitConfig(SplitConfig{ChunkSizeMB: 50}, 1)
	if cfg.SorterCount != 1 {
		t.Errorf("SorterCount = %d, want max(1, 1-2) = 1", cfg.SorterCount)
	}
}

func TestDefaultSplitConfigPreservesExplicitValues(t *testing.T) {
	cfg := defaultSplitConfig(SplitConfig{ChunkSizeMB: 10, ChannelCapacity: 9, SorterCount: 3}, 8)
	if cfg.ChannelCapacity != 9 || cfg.SorterCount != 3 {
		t.Errorf("explicit values were overwritten: %+v", cfg)
	}
}

func TestDefaultMergeConfig(t *testing.T) {
	cfg := defaultMergeConfig(MergeConfig{})
	if cfg.MaxFanIn != 15 {
		t.Errorf("MaxFanIn = %d, want 15", cfg.MaxFanIn)
	}
	if cfg.ReadBufferSize != chunkStreamReadBuffer {
		t.Errorf("ReadBufferSize = %d, want %d", cfg.ReadBufferSize, chunkStreamReadBuffer)
	}
	if cfg.WriteBufferSize != 16<<20 {
		t.Errorf("WriteBufferSize = %d, want %d", cfg.WriteBufferSize, 16<<20)
	}
	if cfg.MergeParallelism != 1 {
		t.Errorf("MergeParallelism = %d, want 1", cfg.MergeParallelism)
	}
}

func TestDefaultMergeConfigPreservesExplicitFanIn(t *testing.T) {
	cfg := defaultMergeConfig(MergeConfig{MaxFanIn: 3})
	if cfg.MaxFanIn != 3 {
		t.Errorf("MaxFanIn = %d, want 3", cfg.MaxFanIn)
	}
}
