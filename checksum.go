package extsort

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	sorterrors "github.com/binarysort/extsort/errors"
)

// checksumFooterSize is the trailing footer written to a run file when
// checksums are enabled: an 8-byte little-endian xxHash64 of the body
// followed by 8 reserved bytes.
const checksumFooterSize = 16

// checksumWriter wraps an io.Writer, folding every written byte into a
// streaming xxHash64 digest so the footer can be appended without a second
// pass over the file, the same incremental-hashing approach used to fold
// per-block payload hashes into a whole-file digest.
type checksumWriter struct {
	w      io.Writer
	digest *xxhash.Digest
}

func newChecksumWriter(w io.Writer) *checksumWriter {
	return &checksumWriter{w: w, digest: xxhash.New()}
}

func (c *checksumWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if n > 0 {
		_, _ = c.digest.Write(p[:n])
	}
	return n, err
}

// writeFooter appends the 16-byte checksum footer for everything written
// so far.
func (c *checksumWriter) writeFooter() error {
	var buf [checksumFooterSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], c.digest.Sum64())
	_, err := c.w.Write(buf[:])
	return err
}

// verifyRunChecksum reads the trailing footer of an open run file and
// recomputes the xxHash64 of everything preceding it, returning
// ErrChecksumFailed on mismatch or ErrTruncatedRun if the file is smaller
// than the footer itself. The file's read offset is left at EOF; callers
// that need to read the body afterward must Seek back to 0.
func verifyRunChecksum(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return sorterrors.ErrIO
	}
	size := info.Size()
	if size < checksumFooterSize {
		return sorterrors.ErrTruncatedRun
	}
	bodyLen := size - checksumFooterSize

	digest := xxhash.New()
	if _, err := f.Seek(0, 0); err != nil {
		return sorterrors.ErrIO
	}
	if _, err := io.CopyN(digest, f, bodyLen); err != nil {
		return sorterrors.ErrIO
	}

	var footer [checksumFooterSize]byte
	if _, err := io.ReadFull(f, footer[:]); err != nil {
		return sorterrors.ErrIO
	}
	want := binary.LittleEndian.Uint64(footer[0:8])
	if digest.Sum64() != want {
		return sorterrors.ErrChecksumFailed
	}
	return nil
}
