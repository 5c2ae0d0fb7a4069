package parallel

import (
	"sync"
)

// Map evaluates fn for every index in [0, n) on a pool of the given size and
// returns the results in index order. Indices are divided into contiguous
// chunks, one submission per chunk.
//
// A task that panics leaves the zero value in its slot; the panic is logged
// by the pool.
func Map[T any](workers, n int, fn func(i int) T, opts ...PoolOption) ([]T, error) {
	results := make([]T, n)
	if n == 0 {
		return results, nil
	}
	if workers <= 1 || n == 1 {
		for i := 0; i < n; i++ {
			results[i] = fn(i)
		}
		return results, nil
	}
	if workers > n {
		workers = n
	}

	pool, err := NewWorkerPool(workers, opts...)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	// overflow-safe ceil(n / workers)
	chunkSize := int((int64(n) + int64(workers) - 1) / int64(workers))
	if chunkSize < 1 {
		chunkSize = 1
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		lo, hi := start, end
		wg.Add(1)
		ok := pool.Submit(func() {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				results[i] = fn(i)
			}
		})
		if !ok {
			wg.Done()
		}
	}

	wg.Wait()
	return results, nil
}
