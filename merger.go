package extsort

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go4org/hashtriemap"
	"golang.org/x/sync/errgroup"

	sorterrors "github.com/binarysort/extsort/errors"
	"github.com/binarysort/extsort/internal/heap"
)

// batchKey identifies one cascade batch by (pass, part).
type batchKey struct {
	pass int
	part int
}

// batchRegistry tracks the output path of every in-flight cascade batch.
// It exists purely so concurrent batches (MergeParallelism > 1) never race
// on bookkeeping; it does not influence which files are produced.
type batchRegistry struct {
	paths hashtriemap.HashTrieMap[batchKey, string]
}

// Merge collapses cfg.Runs into a single sorted file at cfg.FinalPath using
// a bounded fan-in cascade (spec.md §4.2). Consumed inputs are deleted;
// intermediate files are deleted after they are consumed.
func Merge(ctx context.Context, cfg MergeConfig) error {
	cfg = defaultMergeConfig(cfg)
	if cfg.MaxFanIn < 2 {
		return sorterrors.ErrInvalidFanIn
	}

	runs := append([]string(nil), cfg.Runs...)
	pass := 0
	for len(runs) > cfg.MaxFanIn {
		next, err := mergeCascadeLevel(ctx, runs, cfg, pass)
		if err != nil {
			return err
		}
		runs = next
		pass++
	}

	// The final output is plain text lines: it never carries a checksum
	// footer, even when the runs it reads do.
	if err := mergeBatch(ctx, runs, cfg.FinalPath, cfg, false); err != nil {
		return err
	}
	for _, r := range runs {
		os.Remove(r)
	}
	return cleanupIntermediates(cfg.TempDir)
}

// mergeCascadeLevel partitions runs into contiguous batches of at most
// MaxFanIn, merges each into a passP_partQ.tmp intermediate, and deletes
// the batch's inputs immediately after it is merged. Batches within one
// level are independent, so up to MergeParallelism may run concurrently.
func mergeCascadeLevel(ctx context.Context, runs []string, cfg MergeConfig, pass int) ([]string, error) {
	var batches [][]string
	for i := 0; i < len(runs); i += cfg.MaxFanIn {
		end := i + cfg.MaxFanIn
		if end > len(runs) {
			end = len(runs)
		}
		batches = append(batches, runs[i:end])
	}

	registry := &batchRegistry{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MergeParallelism)

	for part, batch := range batches {
		part, batch := part, batch
		key := batchKey{pass: pass, part: part}
		out := filepath.Join(cfg.TempDir, fmt.Sprintf("pass%d_part%d.tmp", pass, part))
		registry.paths.Store(key, out)
		g.Go(func() error {
			if err := mergeBatch(gctx, batch, out, cfg, cfg.Checksums); err != nil {
				return err
			}
			for _, r := range batch {
				os.Remove(r)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]string, 0, len(batches))
	for part := range batches {
		if path, ok := registry.paths.Load(batchKey{pass: pass, part: part}); ok {
			results = append(results, path)
		}
	}
	return results, nil
}

// heapItem pairs a stream's current Row with the stream itself so the
// min-heap can advance the winner after each pop.
type heapItem struct {
	row    Row
	stream *ChunkStream
}

// mergeBatch performs the K-way merge of runs into a single output file
// (spec.md §4.2's per-batch algorithm). It owns every opened stream for the
// duration of the batch and releases them on both success and error paths.
// Inputs are verified when cfg.Checksums is set; a footer is appended to the
// output only when writeFooter is true.
func mergeBatch(ctx context.Context, runs []string, outPath string, cfg MergeConfig, writeFooter bool) (err error) {
	streams := make([]*ChunkStream, 0, len(runs))
	defer func() {
		for _, cs := range streams {
			cs.Close()
		}
	}()

	h := heap.New(func(a, b heapItem) bool {
		return LessRows(a.row, b.row)
	}, len(runs))

	for _, path := range runs {
		cs, oerr := OpenChunkStream(path, cfg.ReadBufferSize, cfg.Checksums)
		if oerr != nil {
			return oerr
		}
		streams = append(streams, cs)
		if cs.HasData() {
			h.Push(heapItem{row: cs.Current(), stream: cs})
		}
	}

	f, cerr := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if cerr != nil {
		return sorterrors.ErrIO
	}
	defer f.Close()

	var out interface {
		Write([]byte) (int, error)
	}
	var cw *checksumWriter
	bw := bufio.NewWriterSize(f, cfg.WriteBufferSize)
	if writeFooter {
		cw = newChecksumWriter(bw)
		out = cw
	} else {
		out = bw
	}

	for h.Len() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		item := h.Pop()
		if _, err := out.Write(item.row.Line); err != nil {
			return sorterrors.ErrIO
		}
		if _, err := out.Write([]byte{'\n'}); err != nil {
			return sorterrors.ErrIO
		}
		if err := item.stream.MoveNext(); err != nil {
			return err
		}
		if item.stream.HasData() {
			h.Push(heapItem{row: item.stream.Current(), stream: item.stream})
		}
	}

	if cw != nil {
		if err := cw.writeFooter(); err != nil {
			return sorterrors.ErrIO
		}
	}
	return bw.Flush()
}

// cleanupIntermediates deletes any leftover passN_* files after the final
// merge, matching spec.md §4.2's cascade cleanup contract.
func cleanupIntermediates(tempDir string) error {
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		if len(name) >= 4 && name[:4] == "pass" {
			os.Remove(filepath.Join(tempDir, name))
		}
	}
	return nil
}
