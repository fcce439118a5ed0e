package assets

import (
	"context"
	"sync"
)

// settleAll runs fn for every index concurrently and waits for all of them,
// returning one error slot per index. A failing item never aborts its
// siblings; the caller decides what a partial result means.
func settleAll(ctx context.Context, n int, fn func(ctx context.Context, i int) error) []error {
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = fn(ctx, i)
		}(i)
	}
	wg.Wait()

	return errs
}
