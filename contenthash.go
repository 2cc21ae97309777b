package extsort

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/zeebo/xxh3"
)

// ContentHash computes a 128-bit xxHash3 fingerprint of a file's contents,
// streamed in fixed-size blocks rather than read into memory at once. The
// equivalence tests use it to compare large sorted outputs without diffing
// them line by line: buffered vs mmap read backends, and sequential vs
// parallel cascade merges.
func ContentHash(path string) ([16]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return [16]byte{}, err
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return [16]byte{}, err
	}
	sum := h.Sum128()
	var out [16]byte
	binary.LittleEndian.PutUint64(out[0:8], sum.Lo)
	binary.LittleEndian.PutUint64(out[8:16], sum.Hi)
	return out, nil
}
