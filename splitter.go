package extsort

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	sorterrors "github.com/binarysort/extsort/errors"
	"github.com/binarysort/extsort/internal/ioperm"
)

// Split runs the pipelined reader/sorters/writer over cfg.InputPath and
// returns the resulting SortedRun paths inside cfg.TempDir, sorted by file
// name for determinism (spec.md §4.1's Completion contract).
func Split(ctx context.Context, cfg SplitConfig) ([]string, error) {
	if cfg.HDDMode && cfg.MmapReader {
		return nil, sorterrors.ErrMmapRequiresSSD
	}
	cfg = defaultSplitConfig(cfg, runtime.NumCPU())
	if cfg.ChunkSizeMB <= 0 {
		return nil, sorterrors.ErrInvalidChunkSize
	}
	if cfg.ChannelCapacity <= 0 {
		return nil, sorterrors.ErrInvalidChannels
	}

	permitSlots := 100
	if cfg.HDDMode {
		permitSlots = 1
	}

	s := &splitter{
		cfg:        cfg,
		ioPermit:   ioperm.New(permitSlots),
		sortQueue:  make(chan *Chunk, cfg.ChannelCapacity),
		writeQueue: make(chan *Chunk, cfg.ChannelCapacity),
	}

	// The mmap backend's mapping must outlive the whole pipeline: rows
	// sourced from it (row.go's zero-copy ParseRow) alias the mapping
	// directly, and the last chunk isn't sorted and written until well
	// after the reader's scan loop has finished. Opening and closing it
	// here, around the full errgroup run, keeps it alive for every chunk
	// that references it.
	if cfg.MmapReader {
		mr, err := openMmapReader(cfg.InputPath)
		if err != nil {
			return nil, err
		}
		defer mr.Close()
		s.mmapSrc = mr
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.read(gctx)
	})

	var sortersWG sync.WaitGroup
	for i := 0; i < cfg.SorterCount; i++ {
		sortersWG.Add(1)
		g.Go(func() error {
			defer sortersWG.Done()
			return s.sort(gctx)
		})
	}
	g.Go(func() error {
		sortersWG.Wait()
		close(s.writeQueue)
		return nil
	})

	g.Go(func() error {
		return s.write(gctx)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.pathsMu.Lock()
	paths := s.paths
	s.pathsMu.Unlock()
	sort.Strings(paths)
	return paths, nil
}

// splitter holds the shared state for one Split invocation: the two
// bounded queues, the I/O permit, and the result bag the writer appends
// to. Row lists (chunks) are owned serially as they cross reader ->
// sort_queue -> one sorter -> write_queue -> writer, matching spec.md §5's
// no-aliasing guarantee.
type splitter struct {
	cfg        SplitConfig
	ioPermit   *ioperm.Permit
	sortQueue  chan *Chunk
	writeQueue chan *Chunk
	mmapSrc    *mmapReader

	pathsMu sync.Mutex
	paths   []string
}

func (s *splitter) addPath(p string) {
	s.pathsMu.Lock()
	s.paths = append(s.paths, p)
	s.pathsMu.Unlock()
}

func chunkPath(tempDir string, index int) string {
	return filepath.Join(tempDir, fmt.Sprintf("chunk_%03d.tmp", index))
}

func ensureTempDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return sorterrors.ErrIO
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sorterrors.ErrIO
	}
	return nil
}
