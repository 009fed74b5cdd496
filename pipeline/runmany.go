package pipeline

import (
	"context"
	"sync"
)

// defaultWorkers bounds the fan-out when the caller doesn't specify one.
const defaultWorkers = 4

// RunMany runs every operation's pipeline concurrently, bounded by
// workers (<=0 uses defaultWorkers), and returns results in the same
// order as ops. Per §5, operations share no mutable state, so each
// runs independently; per §7, operation i failing never blocks
// operation j — a fatal configuration error for one operation is
// captured in its own result rather than aborting the batch.
func RunMany(ctx context.Context, ops []Operation, workers int) []OperationResult {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(ops) {
		workers = len(ops)
	}

	results := make([]OperationResult, len(ops))
	if len(ops) == 0 {
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				result, err := Run(ctx, ops[i])
				if err != nil {
					result.Status = StatusError
					result.Warnings = append(result.Warnings, err.Error())
				}
				results[i] = result
			}
		}()
	}

	for i := range ops {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
