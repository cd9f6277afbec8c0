// Package parallel provides the fork-join loop used by the multiply kernels.
//
// There is no pool and no process-wide setting: every call spawns its own
// goroutines from the Context it is given and joins them before returning.
package parallel

import "sync"

// Context carries the execution settings of one trial.
type Context struct {
	// Threads is the number of workers a parallel loop may use. Values below
	// one are treated as one.
	Threads int
}

// Workers reports how many workers For will use for a range of n items.
func (c Context) Workers(n int) int {
	w := c.Threads
	if w < 1 {
		w = 1
	}
	if w > n {
		w = n
	}
	return w
}

// For splits [0, n) into contiguous chunks, one per worker, and calls
// fn(worker, start, end) for each chunk. It blocks until every call returns.
// A single worker runs on the calling goroutine.
func For(c Context, n int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	workers := c.Workers(n)
	if workers == 1 {
		fn(0, 0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := min(start+chunk, n)
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			fn(w, start, end)
		}(w, start, end)
	}
	wg.Wait()
}
