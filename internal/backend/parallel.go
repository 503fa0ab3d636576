package backend

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

const defaultChunkSize = 1 << 14

// Parallel fans batches out over fixed-size chunks. Each chunk is folded
// left to right and the partial sums are combined in chunk order, so the
// result only depends on the input and the chunk size.
type Parallel struct {
	chunkSize int
	workers   int
}

// NewParallel creates a parallel backend. Zero values select a 16Ki
// chunk and GOMAXPROCS workers.
func NewParallel(chunkSize, workers int) *Parallel {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Parallel{chunkSize: chunkSize, workers: workers}
}

func (p *Parallel) Name() string { return "parallel" }

func (p *Parallel) AddElementwise(a, b []float64) ([]float64, error) {
	if err := checkLengths(a, b); err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	if len(a) <= p.chunkSize {
		for i := range a {
			out[i] = a[i] + b[i]
		}
		return out, nil
	}

	var g errgroup.Group
	g.SetLimit(p.workers)
	for lo := 0; lo < len(a); lo += p.chunkSize {
		hi := min(lo+p.chunkSize, len(a))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				out[i] = a[i] + b[i]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parallel) AddReduce(xs []float64) (float64, error) {
	if len(xs) <= p.chunkSize {
		return foldLeft(xs), nil
	}

	partials := make([]float64, (len(xs)+p.chunkSize-1)/p.chunkSize)

	var g errgroup.Group
	g.SetLimit(p.workers)
	for c := range partials {
		lo := c * p.chunkSize
		hi := min(lo+p.chunkSize, len(xs))
		g.Go(func() error {
			partials[c] = foldLeft(xs[lo:hi])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return foldLeft(partials), nil
}
