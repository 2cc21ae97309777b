package extsort

import (
	"bytes"
	"os"

	"github.com/edsrzf/mmap-go"

	sorterrors "github.com/binarysort/extsort/errors"
)

// mmapReader is the optional zero-copy read backend (SPEC_FULL.md §4.1).
// The whole input file is mapped once; each line returned by nextLine is a
// slice directly into the mapping, so rows built from it need not be
// copied into chunk-owned storage — the mapping itself is the arena, and
// its lifetime is the Splitter's for the duration of the split phase.
type mmapReader struct {
	file *os.File
	data mmap.MMap
	pos  int
}

// openMmapReader maps path read-only. The caller must call Close when done;
// it unmaps before closing the file.
func openMmapReader(path string) (*mmapReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sorterrors.ErrInputNotFound
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, sorterrors.ErrIO
	}
	return &mmapReader{file: f, data: data}, nil
}

// nextLine returns the next '\n'-delimited line (without the terminator),
// or ok=false once every byte has been consumed.
func (r *mmapReader) nextLine() (line []byte, ok bool) {
	if r.pos >= len(r.data) {
		return nil, false
	}
	rest := r.data[r.pos:]
	if nl := bytes.IndexByte(rest, '\n'); nl >= 0 {
		line = rest[:nl]
		r.pos += nl + 1
	} else {
		line = rest
		r.pos = len(r.data)
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, true
}

// Close unmaps the file and closes the underlying descriptor.
func (r *mmapReader) Close() error {
	err := r.data.Unmap()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}
