package aggregate

import (
	"context"
	"sync"
	"time"
)

// Settle runs every task to completion and reports each outcome in order.
// Unlike an errgroup, a failing task never cancels its siblings: one broken
// fetch must not take the rest of the view down with it. Each task runs under
// its own deadline derived from the parent context.
func Settle(ctx context.Context, timeout time.Duration, tasks ...func(context.Context) error) []error {
	errs := make([]error, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task func(context.Context) error) {
			defer wg.Done()

			taskCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				taskCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			errs[i] = task(taskCtx)
		}(i, task)
	}
	wg.Wait()

	return errs
}
