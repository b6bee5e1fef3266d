package service

import (
	"context"
	"sync"

	"github.com/openfroyo/bodygraph/pkg/engine"
)

// BatchResult is the outcome of one request in a batch.
type BatchResult struct {
	Index int    `json:"index"`
	Chart *Chart `json:"chart,omitempty"`
	Err   error  `json:"-"`
}

// ComputeBatch computes independent charts on a bounded worker pool. Results
// are returned in request order. Requests not started before ctx is done
// fail with a timeout error.
func (s *Service) ComputeBatch(ctx context.Context, reqs []ChartRequest) []BatchResult {
	results := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	s.mu.RLock()
	workerCount := s.opts.MaxParallel
	s.mu.RUnlock()
	if workerCount <= 0 {
		workerCount = 4
	}
	if len(reqs) < workerCount {
		workerCount = len(reqs)
	}

	workQueue := make(chan int, len(reqs))
	for i := range reqs {
		workQueue <- i
	}
	close(workQueue)

	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := range workQueue {
				results[i].Index = i
				if err := ctx.Err(); err != nil {
					results[i].Err = engine.NewTimeoutError("batch cancelled before chart started", err)
					continue
				}
				results[i].Chart, results[i].Err = s.Compute(ctx, reqs[i])
			}
		}()
	}

	wg.Wait()

	s.logger.Debug().
		Int("charts", len(reqs)).
		Int("workers", workerCount).
		Msg("Batch computed")

	return results
}
