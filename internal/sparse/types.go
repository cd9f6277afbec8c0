// Package sparse holds the compressed-row and compressed-column matrix layouts
// and the conversion between them.
package sparse

// Index is the closed set of index/pointer element types a dataset may declare.
type Index interface {
	int32 | int64
}

// Float is the closed set of value element types a dataset may declare.
type Float interface {
	float32 | float64
}

// CSR is an m x n matrix in compressed-row layout.
// Entries of row i live in ColIdx/Values[RowPtr[i]:RowPtr[i+1]]; no order
// within a row is assumed.
type CSR[T Float, I Index] struct {
	Rows   int
	Cols   int
	RowPtr []I // len Rows+1
	ColIdx []I // len nnz
	Values []T // len nnz
}

// CSC is an m x n matrix in compressed-column layout.
// Entries of column j live in RowIdx/Values[ColPtr[j]:ColPtr[j+1]].
type CSC[T Float, I Index] struct {
	Rows   int
	Cols   int
	ColPtr []I // len Cols+1
	RowIdx []I // len nnz
	Values []T // len nnz
}

func (a *CSR[T, I]) NNZ() int { return len(a.Values) }

func (b *CSC[T, I]) NNZ() int { return len(b.Values) }

// Entry is one stored nonzero in coordinate form.
type Entry[T Float] struct {
	Row, Col int
	Value    T
}

// Entries lists the stored nonzeros in row-major storage order.
func (a *CSR[T, I]) Entries() []Entry[T] {
	out := make([]Entry[T], 0, len(a.Values))
	for i := 0; i < a.Rows; i++ {
		for p := a.RowPtr[i]; p < a.RowPtr[i+1]; p++ {
			out = append(out, Entry[T]{Row: i, Col: int(a.ColIdx[p]), Value: a.Values[p]})
		}
	}
	return out
}

// Entries lists the stored nonzeros in column-major storage order.
func (b *CSC[T, I]) Entries() []Entry[T] {
	out := make([]Entry[T], 0, len(b.Values))
	for j := 0; j < b.Cols; j++ {
		for p := b.ColPtr[j]; p < b.ColPtr[j+1]; p++ {
			out = append(out, Entry[T]{Row: int(b.RowIdx[p]), Col: j, Value: b.Values[p]})
		}
	}
	return out
}

// MulVec computes y = A*x row by row in float64 and stores the result in y.
// It is the straightforward product used to produce reference vectors.
func (a *CSR[T, I]) MulVec(y, x []T) {
	for i := 0; i < a.Rows; i++ {
		var s float64
		for p := a.RowPtr[i]; p < a.RowPtr[i+1]; p++ {
			s += float64(a.Values[p]) * float64(x[a.ColIdx[p]])
		}
		y[i] = T(s)
	}
}
