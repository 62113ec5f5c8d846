package worker

import (
	"context"
	"errors"
	"log"

	"golang.org/x/sync/errgroup"
)

var errBatchSize = errors.New("worker: batch result count does not match input")

// Pool bounds how many batches run at once.
type Pool struct {
	workerCount int
}

func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{workerCount: workerCount}
}

func (p *Pool) Workers() int {
	return p.workerCount
}

// Map splits items into batches of batchSize and runs fn on each batch using
// at most Workers goroutines. Results keep the order of items. The first
// error cancels the remaining batches.
func Map[T, R any](ctx context.Context, p *Pool, items []T, batchSize int, fn func(ctx context.Context, batch []T) ([]R, error)) ([]R, error) {
	if batchSize < 1 {
		batchSize = len(items)
	}
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workerCount)

	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))

		g.Go(func() error {
			out, err := fn(gctx, items[start:end])
			if err != nil {
				return err
			}
			if len(out) != end-start {
				log.Printf("Worker batch %d-%d returned %d results", start, end, len(out))
				return errBatchSize
			}
			copy(results[start:end], out)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
