// Command generator produces synthetic input files matching the sorter's
// "N. T" line grammar, for exercising the split/merge pipeline at scale.
package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/binarysort/extsort/internal/config"
)

// overshootTolerance is the maximum bytes the generator may write past the
// requested target size, per spec.md §6's generator contract.
const overshootTolerance = 512 << 10

var phraseWords = []string{
	"Apple", "Banana", "Cherry", "Damson", "Elderberry", "Fig", "Grape",
	"Honeydew", "Indigo", "Jackfruit", "Kiwi", "Lemon", "Mango", "Nectarine",
	"Orange", "Papaya", "Quince", "Raspberry", "Strawberry", "Tangerine",
	"is", "the", "best", "fruit", "in", "town", "market", "today", "yesterday",
	"something", "amazing", "delicious", "sweet", "sour", "ripe", "fresh",
}

func main() {
	cfg, err := config.LoadGeneratorConfig(os.Args[1:], uint64(time.Now().UnixNano()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "generator: %v\n", err)
		os.Exit(1)
	}

	if err := generate(cfg.Output, cfg.SizeGB, cfg.Seed); err != nil {
		fmt.Fprintf(os.Stderr, "generator: %v\n", err)
		os.Exit(1)
	}
}

func generate(output string, sizeGB float64, seed uint64) error {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 4<<20)
	defer w.Flush()

	targetBytes := int64(sizeGB * (1 << 30))
	var written int64
	var counter uint64

	for written < targetBytes {
		line := generateLine(counter, seed)
		n, werr := w.Write(line)
		if werr != nil {
			return werr
		}
		written += int64(n)
		counter++
		if written >= targetBytes && written-targetBytes <= overshootTolerance {
			break
		}
	}
	return nil
}

// generateLine deterministically derives one "N. T" line from counter and
// seed using murmur3, so a given seed always reproduces the same file.
func generateLine(counter uint64, seed uint64) []byte {
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(counter >> (8 * i))
	}
	h := murmur3.Sum32WithSeed(buf[:], uint32(seed))

	n := int64(h % (1 << 31)) // grammar range per spec.md §4.3: [0, 2^31)
	numWords := 1 + int(h>>8)%5
	phrase := ""
	for i := 0; i < numWords; i++ {
		wi := (h + uint32(i)*2654435761) % uint32(len(phraseWords))
		if i > 0 {
			phrase += " "
		}
		phrase += phraseWords[wi]
	}
	return []byte(fmt.Sprintf("%d. %s\n", n, phrase))
}
