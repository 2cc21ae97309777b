// Package ioperm implements the I/O permit: a counting semaphore shared by
// the splitter's reader and writer to serialize disk access on spinning
// disks while admitting full concurrency on SSDs.
package ioperm

import "context"

// Permit is a counting semaphore. In HDD mode it is constructed with one
// slot so reads and writes never overlap, preserving sequential head
// motion; in SSD mode a large slot count makes acquisition effectively
// unbounded.
type Permit struct {
	slots chan struct{}
}

// New creates a Permit with n concurrent slots. n=1 gives HDD-mode
// serialization; a large n (the caller's SSD default) gives effectively
// unbounded concurrency.
func New(n int) *Permit {
	if n < 1 {
		n = 1
	}
	slots := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		slots <- struct{}{}
	}
	return &Permit{slots: slots}
}

// Acquire blocks until a slot is available or ctx is cancelled. An already
// cancelled ctx fails without taking a slot.
func (p *Permit) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-p.slots:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot to the semaphore.
func (p *Permit) Release() {
	p.slots <- struct{}{}
}
