// Package gather runs a function over a slice with bounded concurrency and
// per-item failure isolation. The "fetch N things, tolerate individual
// failures" pattern shows up for per-symbol news, per-symbol profiles and
// per-user delivery, so it lives here once.
package gather

import (
	"context"
	"sync"
)

// Map applies fn to every item, at most limit at a time. It returns the
// successful results in input order plus the number of failures. A failed
// item never affects its siblings; fn is expected to log its own failures.
func Map[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) ([]R, int) {
	if limit <= 0 {
		limit = len(items)
	}
	if limit == 0 {
		return nil, 0
	}

	type slot struct {
		value R
		ok    bool
	}

	slots := make([]slot, len(items))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()

			value, err := fn(ctx, item)
			if err != nil {
				return
			}
			slots[i] = slot{value: value, ok: true}
		}(i, item)
	}
	wg.Wait()

	results := make([]R, 0, len(items))
	failed := 0
	for _, s := range slots {
		if !s.ok {
			failed++
			continue
		}
		results = append(results, s.value)
	}
	return results, failed
}
