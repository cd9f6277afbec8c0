package sparse_test

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qrv0/spmvbench/internal/sparse"
)

// randomCSR builds an m x n matrix with roughly density*m*n entries. Column
// order inside each row is shuffled so nothing relies on sorted rows.
func randomCSR(rng *rand.Rand, m, n int, density float64) *sparse.CSR[float64, int32] {
	a := &sparse.CSR[float64, int32]{Rows: m, Cols: n, RowPtr: make([]int32, m+1)}
	for i := 0; i < m; i++ {
		cols := rng.Perm(n)
		for _, j := range cols {
			if rng.Float64() < density {
				a.ColIdx = append(a.ColIdx, int32(j))
				a.Values = append(a.Values, rng.NormFloat64())
			}
		}
		a.RowPtr[i+1] = int32(len(a.Values))
	}
	return a
}

func sortEntries(es []sparse.Entry[float64]) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].Row != es[j].Row {
			return es[i].Row < es[j].Row
		}
		if es[i].Col != es[j].Col {
			return es[i].Col < es[j].Col
		}
		return es[i].Value < es[j].Value
	})
}

func TestToCSC_Diagonal(t *testing.T) {
	a := &sparse.CSR[float64, int32]{
		Rows: 3, Cols: 3,
		RowPtr: []int32{0, 1, 2, 3},
		ColIdx: []int32{0, 1, 2},
		Values: []float64{2, 3, 4},
	}
	b := sparse.ToCSC(a)
	require.Equal(t, []int32{0, 1, 2, 3}, b.ColPtr)
	require.Equal(t, []int32{0, 1, 2}, b.RowIdx)
	require.Equal(t, []float64{2, 3, 4}, b.Values)
}

func TestToCSC_SharedRow(t *testing.T) {
	a := &sparse.CSR[float64, int64]{
		Rows: 1, Cols: 2,
		RowPtr: []int64{0, 2},
		ColIdx: []int64{1, 0},
		Values: []float64{2, 1},
	}
	b := sparse.ToCSC(a)
	require.Equal(t, []int64{0, 1, 2}, b.ColPtr)
	require.Equal(t, []int64{0, 0}, b.RowIdx)
	require.Equal(t, []float64{1, 2}, b.Values)
}

func TestToCSC_EmptyColumnsAndRows(t *testing.T) {
	// 3x4, row 1 empty, columns 0 and 3 empty
	a := &sparse.CSR[float32, int32]{
		Rows: 3, Cols: 4,
		RowPtr: []int32{0, 2, 2, 3},
		ColIdx: []int32{2, 1, 1},
		Values: []float32{5, 6, 7},
	}
	b := sparse.ToCSC(a)
	require.Equal(t, []int32{0, 0, 2, 3, 3}, b.ColPtr)
	require.Equal(t, []int32{0, 2, 0}, b.RowIdx)
	require.Equal(t, []float32{6, 7, 5}, b.Values)
}

func TestToCSC_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		m, n := 1+rng.Intn(40), 1+rng.Intn(40)
		a := randomCSR(rng, m, n, 0.2)
		b := sparse.ToCSC(a)

		// nnz preserved
		require.Equal(t, a.NNZ(), b.NNZ())
		require.Len(t, b.ColPtr, n+1)
		require.Equal(t, int32(0), b.ColPtr[0])
		require.Equal(t, int32(a.NNZ()), b.ColPtr[n])

		// same entries
		want, got := a.Entries(), b.Entries()
		sortEntries(want)
		sortEntries(got)
		require.Equal(t, want, got)

		// stable: ascending rows inside every column
		for j := 0; j < n; j++ {
			for p := b.ColPtr[j] + 1; p < b.ColPtr[j+1]; p++ {
				require.Less(t, b.RowIdx[p-1], b.RowIdx[p], "column %d not row-ordered", j)
			}
		}
	}
}

func TestTranspose_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	a := randomCSR(rng, 25, 17, 0.3)

	at := sparse.Transpose(a)
	require.Equal(t, a.Cols, at.Rows)
	require.Equal(t, a.Rows, at.Cols)

	back := sparse.ToCSC(at).AsTransposedCSR()
	require.Equal(t, a.Rows, back.Rows)
	require.Equal(t, a.Cols, back.Cols)

	want, got := a.Entries(), back.Entries()
	sortEntries(want)
	sortEntries(got)
	require.Equal(t, want, got)
	require.NoError(t, back.Validate())
}

func TestMulVec(t *testing.T) {
	a := &sparse.CSR[float64, int32]{
		Rows: 1, Cols: 2,
		RowPtr: []int32{0, 2},
		ColIdx: []int32{0, 1},
		Values: []float64{1, 2},
	}
	y := make([]float64, 1)
	a.MulVec(y, []float64{3, 4})
	require.Equal(t, []float64{11}, y)
}

func TestValidate(t *testing.T) {
	good := func() *sparse.CSR[float64, int32] {
		return &sparse.CSR[float64, int32]{
			Rows: 2, Cols: 2,
			RowPtr: []int32{0, 1, 2},
			ColIdx: []int32{0, 1},
			Values: []float64{1, 1},
		}
	}
	require.NoError(t, good().Validate())

	cases := map[string]func(a *sparse.CSR[float64, int32]){
		"short pointers": func(a *sparse.CSR[float64, int32]) { a.RowPtr = a.RowPtr[:2] },
		"bad start":      func(a *sparse.CSR[float64, int32]) { a.RowPtr[0] = 1 },
		"bad end":        func(a *sparse.CSR[float64, int32]) { a.RowPtr[2] = 1 },
		"decreasing":     func(a *sparse.CSR[float64, int32]) { a.RowPtr[1] = 3 },
		"column bound":   func(a *sparse.CSR[float64, int32]) { a.ColIdx[1] = 2 },
		"negative col":   func(a *sparse.CSR[float64, int32]) { a.ColIdx[0] = -1 },
		"length skew":    func(a *sparse.CSR[float64, int32]) { a.ColIdx = a.ColIdx[:1] },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			a := good()
			mutate(a)
			err := a.Validate()
			require.Error(t, err)
			require.True(t, errors.Is(err, sparse.ErrMalformed))
		})
	}
}
