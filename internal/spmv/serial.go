package spmv

import (
	"github.com/qrv0/spmvbench/internal/parallel"
	"github.com/qrv0/spmvbench/internal/sparse"
)

// MultiplySerial walks columns in ascending order and the entries of each
// column in storage order. The summation order is fixed, so the result is
// bit-for-bit reproducible. ctx is ignored.
func MultiplySerial[T sparse.Float, I sparse.Index](_ parallel.Context, a *sparse.CSC[T, I], x, y []T) {
	for j := 0; j < a.Cols; j++ {
		xj := x[j]
		for p := a.ColPtr[j]; p < a.ColPtr[j+1]; p++ {
			y[a.RowIdx[p]] += a.Values[p] * xj
		}
	}
}
