package extsort

import (
	"bufio"
	"errors"
	"io"
	"os"

	sorterrors "github.com/binarysort/extsort/errors"
)

// chunkStreamReadBuffer is the default buffer size for merge-phase reads,
// per spec.md §4.2's 4 MiB read buffer for K-way merge inputs.
const chunkStreamReadBuffer = 4 << 20

// ChunkStream is a cursor over one SortedRun file: a buffered reader plus a
// single pre-read "current" Row. In the has_data state, every prior yielded
// Row compares <= current.
type ChunkStream struct {
	path    string
	file    *os.File
	reader  *bufio.Reader
	current Row
	hasData bool
	// currentLine retains ownership of the bytes backing `current` across
	// MoveNext calls until the caller advances past them.
	currentLine []byte
}

// OpenChunkStream opens path with the given buffer size and pre-reads the
// first parsable Row. If the file has no parsable line, the stream enters
// the end state but construction still succeeds. When verifyChecksum is
// true, the run's trailing footer (see checksum.go) is validated before any
// line is read.
func OpenChunkStream(path string, bufSize int, verifyChecksum bool) (*ChunkStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sorterrors.ErrRunOpen
	}
	var body io.Reader = f
	if verifyChecksum {
		if err := verifyRunChecksum(f); err != nil {
			f.Close()
			return nil, err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, sorterrors.ErrIO
		}
		if _, err := f.Seek(0, 0); err != nil {
			f.Close()
			return nil, sorterrors.ErrIO
		}
		body = io.LimitReader(f, info.Size()-checksumFooterSize)
	}
	fadviseSequential(int(f.Fd()), 0, 0)
	cs := &ChunkStream{
		path:   path,
		file:   f,
		reader: bufio.NewReaderSize(body, bufSize),
	}
	if err := cs.MoveNext(); err != nil {
		f.Close()
		return nil, err
	}
	return cs, nil
}

// HasData reports whether Current holds a valid Row.
func (cs *ChunkStream) HasData() bool {
	return cs.hasData
}

// Current returns the pre-read Row. Valid only when HasData() is true.
func (cs *ChunkStream) Current() Row {
	return cs.current
}

// MoveNext reads lines until one parses successfully, or the stream is
// exhausted. I/O errors are fatal and surface to the caller; unparsable or
// blank lines are silently skipped, matching the splitter's reader policy.
func (cs *ChunkStream) MoveNext() error {
	for {
		line, err := cs.reader.ReadBytes('\n')
		if len(line) > 0 {
			line = trimNewline(line)
			if row, ok := ParseRow(line); ok {
				cs.currentLine = line
				cs.current = row
				cs.hasData = true
				return nil
			}
			// blank/unparsable line: keep scanning
		}
		if err != nil {
			cs.hasData = false
			cs.current = Row{}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return sorterrors.ErrIO
		}
	}
}

// Close releases the underlying file handle.
func (cs *ChunkStream) Close() error {
	return cs.file.Close()
}

func trimNewline(b []byte) []byte {
	n := len(b)
	if n > 0 && b[n-1] == '\n' {
		n--
	}
	if n > 0 && b[n-1] == '\r' {
		n--
	}
	return b[:n]
}
