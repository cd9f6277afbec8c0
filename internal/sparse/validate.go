package sparse

import "fmt"

// Validate checks the structural invariants of a: pointer length and
// monotonicity, RowPtr[0] == 0, RowPtr[m] == nnz, and column bounds.
// The conversion and multiply kernels never call it; loaders do.
func (a *CSR[T, I]) Validate() error {
	if a.Rows < 0 || a.Cols < 0 {
		return fmt.Errorf("%w: negative shape %dx%d", ErrMalformed, a.Rows, a.Cols)
	}
	if len(a.RowPtr) != a.Rows+1 {
		return fmt.Errorf("%w: row pointer length %d, want %d", ErrMalformed, len(a.RowPtr), a.Rows+1)
	}
	if len(a.ColIdx) != len(a.Values) {
		return fmt.Errorf("%w: %d column indices for %d values", ErrMalformed, len(a.ColIdx), len(a.Values))
	}
	if a.RowPtr[0] != 0 {
		return fmt.Errorf("%w: row pointer starts at %d", ErrMalformed, a.RowPtr[0])
	}
	if int(a.RowPtr[a.Rows]) != len(a.Values) {
		return fmt.Errorf("%w: row pointer ends at %d, nnz is %d", ErrMalformed, a.RowPtr[a.Rows], len(a.Values))
	}
	for i := 0; i < a.Rows; i++ {
		if a.RowPtr[i+1] < a.RowPtr[i] {
			return fmt.Errorf("%w: row pointer decreases at row %d", ErrMalformed, i)
		}
	}
	for p, j := range a.ColIdx {
		if j < 0 || int(j) >= a.Cols {
			return fmt.Errorf("%w: column index %d at position %d outside [0,%d)", ErrMalformed, j, p, a.Cols)
		}
	}
	return nil
}
