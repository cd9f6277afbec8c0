package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkers(t *testing.T) {
	require.Equal(t, 1, Context{Threads: 0}.Workers(10))
	require.Equal(t, 1, Context{Threads: -3}.Workers(10))
	require.Equal(t, 4, Context{Threads: 4}.Workers(10))
	require.Equal(t, 3, Context{Threads: 8}.Workers(3))
}

func TestForCoversRangeOnce(t *testing.T) {
	for _, threads := range []int{1, 2, 3, 4, 7, 16, 200} {
		n := 101
		hits := make([]int32, n)
		For(Context{Threads: threads}, n, func(_, start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			require.Equal(t, int32(1), h, "threads=%d index %d", threads, i)
		}
	}
}

func TestForWorkerIDsDistinct(t *testing.T) {
	n, threads := 64, 5
	seen := make([]int32, threads)
	For(Context{Threads: threads}, n, func(w, _, _ int) {
		atomic.AddInt32(&seen[w], 1)
	})
	for w, c := range seen {
		require.Equal(t, int32(1), c, "worker %d", w)
	}
}

func TestForEmpty(t *testing.T) {
	called := false
	For(Context{Threads: 4}, 0, func(_, _, _ int) { called = true })
	require.False(t, called)
}
