package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/qrv0/spmvbench/internal/binsparse"
	"github.com/qrv0/spmvbench/internal/sparse"
)

// Writes a random CSR dataset (A, x, y_ref) in binsparse layout.
func main() {
	out := flag.String("out", "dataset", "output directory")
	rows := flag.Int("rows", 1000, "rows")
	cols := flag.Int("cols", 1000, "cols")
	density := flag.Float64("density", 0.01, "fraction of nonzero entries")
	seed := flag.Int64("seed", 1, "random seed")
	index := flag.String("index", "int64", "index type: int32 or int64")
	values := flag.String("values", "float64", "value type: float32 or float64")
	flag.Parse()
	if *rows < 1 || *cols < 1 || *density <= 0 || *density > 1 {
		fmt.Fprintln(os.Stderr, "make_dataset: need rows, cols >= 1 and 0 < density <= 1")
		os.Exit(1)
	}

	var err error
	switch *index + "/" + *values {
	case "int32/float32":
		err = write[float32, int32](*out, *rows, *cols, *density, *seed)
	case "int32/float64":
		err = write[float64, int32](*out, *rows, *cols, *density, *seed)
	case "int64/float32":
		err = write[float32, int64](*out, *rows, *cols, *density, *seed)
	case "int64/float64":
		err = write[float64, int64](*out, *rows, *cols, *density, *seed)
	default:
		err = fmt.Errorf("unsupported types %s/%s", *index, *values)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "make_dataset: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Wrote:", *out)
}

func write[T sparse.Float, I sparse.Index](dir string, rows, cols int, density float64, seed int64) error {
	a, x := generate[T, I](rand.New(rand.NewSource(seed)), rows, cols, density)
	y := make([]T, rows)
	a.MulVec(y, x)
	if err := binsparse.WriteCSR(dir, binsparse.GroupA, a); err != nil {
		return err
	}
	if err := binsparse.WriteDense(dir, binsparse.GroupX, x); err != nil {
		return err
	}
	return binsparse.WriteDense(dir, binsparse.GroupYRef, y)
}

// generate draws each entry independently with probability density. Values
// are small integers so every accumulation order gives the same sum.
func generate[T sparse.Float, I sparse.Index](rng *rand.Rand, rows, cols int, density float64) (*sparse.CSR[T, I], []T) {
	a := &sparse.CSR[T, I]{Rows: rows, Cols: cols, RowPtr: make([]I, 1, rows+1)}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if rng.Float64() < density {
				a.ColIdx = append(a.ColIdx, I(j))
				a.Values = append(a.Values, T(rng.Intn(9)+1))
			}
		}
		a.RowPtr = append(a.RowPtr, I(len(a.ColIdx)))
	}
	x := make([]T, cols)
	for j := range x {
		x[j] = T(rng.Intn(5) - 2)
	}
	return a, x
}
