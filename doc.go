// Package extsort implements an external merge sort engine for
// line-oriented text files that do not fit in memory.
//
// Each line has the form "N. T": a decimal integer prefix followed by an
// arbitrary text suffix. Lines are sorted by T under byte-wise order, then
// by N. The engine is split into two phases: Split carves the input into
// bounded sorted runs using a pipelined reader/sorters/writer, and Merge
// collapses the run set into one sorted file with a bounded-fan-in K-way
// merge, cascading when the run count exceeds the fan-in bound.
//
// # Basic usage
//
//	runs, err := extsort.Split(ctx, extsort.SplitConfig{
//	    InputPath: "data.txt",
//	    TempDir:   "temp_chunks",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = extsort.Merge(ctx, extsort.MergeConfig{
//	    Runs:      runs,
//	    FinalPath: "result.txt",
//	    TempDir:   "temp_chunks",
//	})
//
// Run wraps both phases plus temp-directory lifecycle and stats:
//
//	stats, err := extsort.Run(ctx, extsort.Config{
//	    InputPath:  "data.txt",
//	    OutputPath: "result.txt",
//	    TempDir:    "temp_chunks",
//	})
//
// # Package structure
//
//   - Data model: row.go (Row, ParseRow, CompareRows), chunk.go (Chunk)
//   - Split phase: splitter.go, splitter_reader.go, splitter_sort.go, splitter_writer.go
//   - Merge phase: merger.go, chunkstream.go
//   - Orchestration: driver.go (Run, Config), options.go (SplitConfig, MergeConfig defaults)
//   - Optional zero-copy I/O: mmapreader.go, checksum.go
//   - Platform hints: fadvise_*.go, fallocate_*.go
//   - Ambient stack: internal/diag (logging, stats), internal/config, internal/bootstrap,
//     internal/progress, internal/notify
package extsort
