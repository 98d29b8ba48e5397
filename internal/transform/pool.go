package transform

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/ZoussCity/stardome/internal/frames"
	"github.com/ZoussCity/stardome/internal/rotation"
)

// DefaultChunkSize is the number of positions one job converts.
const DefaultChunkSize = 4096

// chunkJob is a contiguous slice of the input handled by one worker.
type chunkJob struct {
	start, end int
}

// WorkerPool converts large position batches in parallel. One matrix is
// shared by all workers; each writes a disjoint range of the output.
type WorkerPool struct {
	workers   int
	chunkSize int
	logger    *slog.Logger
}

// NewWorkerPool creates a pool with the given number of workers. A
// non-positive count uses runtime.NumCPU(); a nil logger uses slog.Default().
func NewWorkerPool(workers int, logger *slog.Logger) *WorkerPool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		workers:   workers,
		chunkSize: DefaultChunkSize,
		logger:    logger,
	}
}

// Workers returns the pool size.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// ApplyMatrix applies m to every position using the pool. Batches that fit
// in one chunk are converted inline. If ctx is cancelled before all chunks
// are scheduled, ApplyMatrix returns ctx.Err() and a nil slice.
func (wp *WorkerPool) ApplyMatrix(ctx context.Context, m rotation.Matrix3, ps []frames.TEME) ([]frames.ITRS, error) {
	if len(ps) <= wp.chunkSize || wp.workers == 1 {
		return ApplyMatrixBatch(m, ps), nil
	}

	out := make([]frames.ITRS, len(ps))
	jobs := make(chan chunkJob, wp.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < wp.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				for j := job.start; j < job.end; j++ {
					out[j] = frames.NewITRS(m.Apply(ps[j].Position()))
				}
			}
		}()
	}

	var cancelled bool
feed:
	for start := 0; start < len(ps); start += wp.chunkSize {
		end := min(start+wp.chunkSize, len(ps))
		select {
		case jobs <- chunkJob{start: start, end: end}:
		case <-ctx.Done():
			cancelled = true
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled {
		wp.logger.Warn("batch transform cancelled",
			"component", "transform",
			"positions", len(ps),
			"error", ctx.Err(),
		)
		return nil, ctx.Err()
	}
	return out, nil
}
