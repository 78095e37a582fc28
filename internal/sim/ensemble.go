package sim

import (
	"context"
	"sync"
)

// Ensemble runs one simulation per initial state in parallel. Each run gets
// its own simulator from the factory, so systems, integrators and metrics
// are never shared between goroutines.
type Ensemble struct {
	factory func() (*Simulator, error)
	workers int
}

func NewEnsemble(factory func() (*Simulator, error), workers int) *Ensemble {
	if workers <= 0 {
		workers = 1
	}
	return &Ensemble{factory: factory, workers: workers}
}

// Run returns results in the order of x0s. Every run is attempted; errs[i]
// holds the failure of run i, if any.
func (e *Ensemble) Run(ctx context.Context, x0s []State, cfg Config) (results []*Result, errs []error) {
	results = make([]*Result, len(x0s))
	errs = make([]error, len(x0s))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				s, err := e.factory()
				if err != nil {
					errs[idx] = err
					continue
				}
				results[idx], errs[idx] = s.Run(ctx, x0s[idx], cfg)
			}
		}()
	}

	for i := range x0s {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, errs
}
