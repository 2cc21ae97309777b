package extsort

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	sorterrors "github.com/binarysort/extsort/errors"
)

// estimatedRowsPerChunk pre-sizes a fresh chunk's row slice, per spec.md
// §4.1's guidance of chunk_size_mb*2^20/50 bytes-per-row.
func estimatedRowsPerChunk(chunkSizeMB int) int {
	return (chunkSizeMB << 20) / 50
}

// read implements the Splitter's reader role: it owns the I/O permit while
// scanning, releases it around each blocking push to sortQueue, and closes
// sortQueue exactly once on both the success and failure paths so the
// sorter pool always terminates.
func (s *splitter) read(ctx context.Context) (err error) {
	defer close(s.sortQueue)

	thresholdBytes := int64(s.cfg.ChunkSizeMB) << 20
	estRows := estimatedRowsPerChunk(s.cfg.ChunkSizeMB)

	var lineSource func(yield func(line []byte, ok bool) bool) error
	if s.cfg.MmapReader {
		lineSource, err = s.mmapLineSource()
	} else {
		lineSource, err = s.bufferedLineSource()
	}
	if err != nil {
		return err
	}

	index := 0
	chunk := newChunk(index, estRows)
	var accumulated int64
	// held records whether the reader currently owns the permit, so the
	// deferred release never returns a slot it gave up in a failed flush.
	held := false

	flush := func() error {
		if len(chunk.Rows) == 0 {
			return nil
		}
		s.ioPermit.Release()
		held = false
		select {
		case s.sortQueue <- chunk:
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := s.ioPermit.Acquire(ctx); err != nil {
			return err
		}
		held = true
		index++
		chunk = newChunk(index, estRows)
		accumulated = 0
		return nil
	}

	if err := s.ioPermit.Acquire(ctx); err != nil {
		return err
	}
	held = true
	defer func() {
		if held {
			s.ioPermit.Release()
		}
	}()

	lineErr := lineSource(func(line []byte, ok bool) bool {
		if !ok {
			return false
		}
		row, valid := ParseRow(line)
		if !valid {
			return true
		}
		chunk.Rows = append(chunk.Rows, row)
		// Matches chunk.go's byteEstimate coefficient (1, not spec.md's
		// 2, since Go's []byte lines are 8-bit storage; see DESIGN.md).
		accumulated += int64(len(row.Line)) + 20
		if accumulated >= thresholdBytes {
			if ferr := flush(); ferr != nil {
				err = ferr
				return false
			}
		}
		return true
	})
	if lineErr != nil {
		return lineErr
	}
	if err != nil {
		return err
	}
	return flush()
}

// bufferedLineSource is the default reader backend: a >=1MiB bufio.Reader
// over the input file with sequential-scan hints applied where supported.
func (s *splitter) bufferedLineSource() (func(func([]byte, bool) bool) error, error) {
	f, err := os.Open(s.cfg.InputPath)
	if err != nil {
		return nil, sorterrors.ErrInputNotFound
	}
	fadviseSequential(int(f.Fd()), 0, 0)
	r := bufio.NewReaderSize(f, 1<<20)

	return func(yield func([]byte, bool) bool) error {
		defer f.Close()
		for {
			line, rerr := r.ReadBytes('\n')
			if len(line) > 0 {
				line = trimNewline(line)
				if len(line) > 0 {
					cp := make([]byte, len(line))
					copy(cp, line)
					if !yield(cp, true) {
						return nil
					}
				}
			}
			if rerr != nil {
				if errors.Is(rerr, io.EOF) {
					return nil
				}
				return sorterrors.ErrIO
			}
		}
	}, nil
}

// mmapLineSource is the opt-in zero-copy reader backend: lines alias the
// mapped input file directly, so no per-line copy is performed. The mapping
// itself is owned by the splitter for the whole Split call (see Split), not
// by this scan loop, since rows built from it are still being sorted and
// written well after this loop returns.
func (s *splitter) mmapLineSource() (func(func([]byte, bool) bool) error, error) {
	mr := s.mmapSrc
	return func(yield func([]byte, bool) bool) error {
		for {
			line, ok := mr.nextLine()
			if !ok {
				return nil
			}
			if len(line) == 0 {
				continue
			}
			if !yield(line, true) {
				return nil
			}
		}
	}, nil
}
