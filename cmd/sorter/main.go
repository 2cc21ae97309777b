// Command sorter is the CLI front-end for the external merge sort engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/binarysort/extsort/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envFile := ".env"
	for i, a := range os.Args[1:] {
		if a == "--env-file" && i+2 < len(os.Args) {
			envFile = os.Args[i+2]
		}
	}

	stats, err := bootstrap.Run(ctx, os.Args[1:], envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sorter: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("done: elapsed=%.2fs peak_rss=%.1fMB avg_rate=%.1fMB/s\n",
		stats.ElapsedSeconds, stats.PeakRSSMB, stats.AvgMBPerSecond)
}
