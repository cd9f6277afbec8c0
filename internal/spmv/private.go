package spmv

import (
	"github.com/qrv0/spmvbench/internal/parallel"
	"github.com/qrv0/spmvbench/internal/sparse"
)

// MultiplyPrivate splits the column range like MultiplyAtomic but gives each
// worker its own zeroed partial vector. After the join the partials are added
// into y in worker order. It trades Threads*Rows extra memory for plain adds.
func MultiplyPrivate[T sparse.Float, I sparse.Index](ctx parallel.Context, a *sparse.CSC[T, I], x, y []T) {
	workers := ctx.Workers(a.Cols)
	if workers <= 1 {
		MultiplySerial(ctx, a, x, y)
		return
	}
	partial := make([][]T, workers)
	parallel.For(ctx, a.Cols, func(w, start, end int) {
		acc := make([]T, a.Rows)
		for j := start; j < end; j++ {
			xj := x[j]
			for p := a.ColPtr[j]; p < a.ColPtr[j+1]; p++ {
				acc[a.RowIdx[p]] += a.Values[p] * xj
			}
		}
		partial[w] = acc
	})
	for _, acc := range partial {
		// workers past the end of a short range never ran
		if acc == nil {
			continue
		}
		for i, v := range acc {
			y[i] += v
		}
	}
}
