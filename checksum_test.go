package extsort

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	sorterrors "github.com/binarysort/extsort/errors"
)

func writeChecksummedRun(t *testing.T, path string, lines []string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	cw := newChecksumWriter(bw)
	for _, l := range lines {
		if _, err := cw.Write([]byte(l + "\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := cw.writeFooter(); err != nil {
		t.Fatalf("writeFooter: %v", err)
	}
	if err := bw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestChecksumRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.tmp")
	writeChecksummedRun(t, path, []string{"1. a", "2. b", "3. c"})

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if err := verifyRunChecksum(f); err != nil {
		t.Fatalf("verifyRunChecksum on an untouched file: %v", err)
	}
}

func TestChecksumDetectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.tmp")
	writeChecksummedRun(t, path, []string{"1. a", "2. b", "3. c"})

	// Flip a byte inside the body.
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteAt([]byte("X"), 3); err != nil {
		t.Fatalf("writeAt: %v", err)
	}
	f.Close()

	f, err = os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	err = verifyRunChecksum(f)
	if err != sorterrors.ErrChecksumFailed {
		t.Fatalf("verifyRunChecksum after corruption = %v, want ErrChecksumFailed", err)
	}
}

func TestChecksumTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.tmp")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if err := verifyRunChecksum(f); err != sorterrors.ErrTruncatedRun {
		t.Fatalf("verifyRunChecksum on a too-small file = %v, want ErrTruncatedRun", err)
	}
}

func TestChunkStreamHonorsChecksumFooterBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.tmp")
	lines := []string{"1. a", "2. b", "3. c"}
	writeChecksummedRun(t, path, lines)

	cs, err := OpenChunkStream(path, 4096, true)
	if err != nil {
		t.Fatalf("OpenChunkStream with checksum verification: %v", err)
	}
	defer cs.Close()

	var got []string
	for cs.HasData() {
		got = append(got, string(cs.Current().Text()))
		if err := cs.MoveNext(); err != nil {
			t.Fatalf("MoveNext: %v", err)
		}
	}
	if len(got) != len(lines) {
		t.Fatalf("got %v, want 3 lines with no footer bytes leaking in", got)
	}
}
