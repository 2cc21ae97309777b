package extsort

import (
	"bufio"
	"context"
	"io"
	"os"

	sorterrors "github.com/binarysort/extsort/errors"
)

// writeBufferSize is the writer's per-file OS buffer, per spec.md §4.1.
const writeBufferSize = 4 << 20

// write implements the Splitter's writer role: for each chunk received it
// acquires the I/O permit, writes the run file, appends the path to the
// result bag, and releases the permit. On failure it attempts to delete
// the partially written file before propagating the error.
func (s *splitter) write(ctx context.Context) error {
	for {
		select {
		case chunk, ok := <-s.writeQueue:
			if !ok {
				return nil
			}
			if err := s.writeChunk(ctx, chunk); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *splitter) writeChunk(ctx context.Context, chunk *Chunk) error {
	defer chunk.release()

	if err := s.ioPermit.Acquire(ctx); err != nil {
		return err
	}
	defer s.ioPermit.Release()

	path := chunkPath(s.cfg.TempDir, chunk.Index)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return sorterrors.ErrChunkWrite
	}

	if estimate := byteEstimate(chunk.Rows); estimate > 0 {
		// Best-effort: a failed pre-allocation just means the writer falls
		// back to on-demand block allocation, which is always safe.
		_ = fallocateFile(f, estimate)
	}

	var out interface {
		Write([]byte) (int, error)
	}
	var cw *checksumWriter
	bw := bufio.NewWriterSize(f, writeBufferSize)
	if s.cfg.Checksums {
		cw = newChecksumWriter(bw)
		out = cw
	} else {
		out = bw
	}

	writeErr := func() error {
		for _, row := range chunk.Rows {
			if _, err := out.Write(row.Line); err != nil {
				return sorterrors.ErrChunkWrite
			}
			if _, err := out.Write([]byte{'\n'}); err != nil {
				return sorterrors.ErrChunkWrite
			}
		}
		if cw != nil {
			if err := cw.writeFooter(); err != nil {
				return sorterrors.ErrChunkWrite
			}
		}
		if err := bw.Flush(); err != nil {
			return sorterrors.ErrChunkWrite
		}
		return nil
	}()

	if writeErr == nil {
		if pos, err := f.Seek(0, io.SeekCurrent); err == nil {
			// fallocateFile may have reserved more than was actually
			// written; shrink back to the true content length so
			// verifyRunChecksum and the merger's size checks see it.
			_ = f.Truncate(pos)
		}
	}

	closeErr := f.Close()
	if writeErr != nil {
		os.Remove(path)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(path)
		return sorterrors.ErrChunkWrite
	}

	s.addPath(path)
	return nil
}
