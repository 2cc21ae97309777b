package extsort

import (
	"sort"
	"sync"
)

// Chunk is an ordered sequence of Rows produced by the reader, bounded by
// an in-memory size estimate. Index is assigned monotonically at creation
// and used to name the chunk's on-disk file so that chunk_000..chunk_K
// reflects input order.
type Chunk struct {
	Index int
	Rows  []Row
}

// rowSlicePool recycles the backing arrays for Chunk.Rows across the
// pipeline so that steady-state operation performs no per-chunk
// allocation once the pool has warmed up, matching the pooling discipline
// the parallel block builder uses for its entry slices (getEntrySlice /
// putEntrySlice).
var rowSlicePool = sync.Pool{
	New: func() any {
		return make([]Row, 0)
	},
}

func getRowSlice() []Row {
	return rowSlicePool.Get().([]Row)[:0]
}

func putRowSlice(s []Row) {
	rowSlicePool.Put(s[:0]) //nolint:staticcheck
}

// newChunk allocates a Chunk pre-sized for an estimated capacity in rows,
// per spec.md §4.1's guidance to pre-size to approximately
// chunk_size_mb*2^20/50.
func newChunk(index int, estimatedRows int) *Chunk {
	rows := getRowSlice()
	if cap(rows) < estimatedRows {
		rows = make([]Row, 0, estimatedRows)
	}
	return &Chunk{Index: index, Rows: rows}
}

// release returns the chunk's backing storage to the pool. Callers must not
// use the Chunk after calling release.
func (c *Chunk) release() {
	putRowSlice(c.Rows)
	c.Rows = nil
}

// sortInPlace sorts the chunk's rows using the Row ordering. An unstable
// sort suffices: spec.md leaves relative order among equal rows
// unspecified.
func (c *Chunk) sortInPlace() {
	sort.Slice(c.Rows, func(i, j int) bool {
		return LessRows(c.Rows[i], c.Rows[j])
	})
}

// byteEstimate computes the reader's running memory estimate
// b = sum(len(line) + 20) across the chunk's rows. spec.md §4.1 documents
// the coefficient as 2 for 16-bit character storage; Go's []byte lines are
// 8-bit, so the coefficient is 1 here to keep the estimate matched to
// actual heap usage, per spec.md §9's open question on this point.
func byteEstimate(rows []Row) int64 {
	var b int64
	for _, r := range rows {
		b += int64(len(r.Line)) + 20
	}
	return b
}
