package sparse

// ToCSC converts a CSR matrix to CSC with a counting sort over columns.
//
// Rows are scanned in order, so entries inside each output column appear in
// ascending row order. The nonzero count and values are preserved exactly.
// Column indices must lie in [0, a.Cols); this is not checked.
func ToCSC[T Float, I Index](a *CSR[T, I]) *CSC[T, I] {
	m, n := a.Rows, a.Cols
	ptr := make([]I, n+1)

	// per-column counts, shifted by one so the prefix sum lands in place
	for i := 0; i < m; i++ {
		for p := a.RowPtr[i]; p < a.RowPtr[i+1]; p++ {
			ptr[a.ColIdx[p]+1]++
		}
	}
	for j := 0; j < n; j++ {
		ptr[j+1] += ptr[j]
	}

	nnz := len(a.Values)
	idx := make([]I, nnz)
	val := make([]T, nnz)
	next := make([]I, n)
	copy(next, ptr[:n])

	for i := 0; i < m; i++ {
		for p := a.RowPtr[i]; p < a.RowPtr[i+1]; p++ {
			j := a.ColIdx[p]
			dst := next[j]
			next[j]++
			idx[dst] = I(i)
			val[dst] = a.Values[p]
		}
	}
	return &CSC[T, I]{Rows: m, Cols: n, ColPtr: ptr, RowIdx: idx, Values: val}
}

// AsTransposedCSR reinterprets b as the CSR layout of its transpose. The
// arrays are shared, not copied.
func (b *CSC[T, I]) AsTransposedCSR() *CSR[T, I] {
	return &CSR[T, I]{Rows: b.Cols, Cols: b.Rows, RowPtr: b.ColPtr, ColIdx: b.RowIdx, Values: b.Values}
}

// Transpose returns the CSR layout of the transpose of a.
func Transpose[T Float, I Index](a *CSR[T, I]) *CSR[T, I] {
	return ToCSC(a).AsTransposedCSR()
}
