package extsort

import "context"

// sort implements one Sorter worker: consume chunks from sortQueue, sort
// each in place using the Row ordering, forward to writeQueue. Exits when
// sortQueue is closed and drained, or ctx is cancelled.
func (s *splitter) sort(ctx context.Context) error {
	for {
		select {
		case chunk, ok := <-s.sortQueue:
			if !ok {
				return nil
			}
			chunk.sortInPlace()
			select {
			case s.writeQueue <- chunk:
			case <-ctx.Done():
				chunk.release()
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
