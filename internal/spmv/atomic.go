package spmv

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/qrv0/spmvbench/internal/parallel"
	"github.com/qrv0/spmvbench/internal/sparse"
)

// MultiplyAtomic splits the column range across ctx.Threads workers. Workers
// share y and add into it with an atomic read-modify-write per element, so
// columns that hit the same row never lose an update. The order in which
// workers add to a row is unspecified and the low bits of the result may
// vary from run to run.
func MultiplyAtomic[T sparse.Float, I sparse.Index](ctx parallel.Context, a *sparse.CSC[T, I], x, y []T) {
	add := adder[T]()
	parallel.For(ctx, a.Cols, func(_, start, end int) {
		for j := start; j < end; j++ {
			xj := x[j]
			for p := a.ColPtr[j]; p < a.ColPtr[j+1]; p++ {
				add(&y[a.RowIdx[p]], a.Values[p]*xj)
			}
		}
	})
}

// adder returns the atomic add for the concrete float type behind T.
func adder[T sparse.Float]() func(p *T, v T) {
	var zero T
	switch any(zero).(type) {
	case float32:
		return func(p *T, v T) { AddFloat32((*float32)(unsafe.Pointer(p)), float32(v)) }
	default:
		return func(p *T, v T) { AddFloat64((*float64)(unsafe.Pointer(p)), float64(v)) }
	}
}

// AddFloat64 atomically adds v to *p and returns the new value.
func AddFloat64(p *float64, v float64) float64 {
	u := (*uint64)(unsafe.Pointer(p))
	for {
		old := atomic.LoadUint64(u)
		sum := math.Float64frombits(old) + v
		if atomic.CompareAndSwapUint64(u, old, math.Float64bits(sum)) {
			return sum
		}
	}
}

// AddFloat32 atomically adds v to *p and returns the new value.
func AddFloat32(p *float32, v float32) float32 {
	u := (*uint32)(unsafe.Pointer(p))
	for {
		old := atomic.LoadUint32(u)
		sum := math.Float32frombits(old) + v
		if atomic.CompareAndSwapUint32(u, old, math.Float32bits(sum)) {
			return sum
		}
	}
}
