// Package check compares a benchmark result against a reference vector.
//
// The comparison is observational: mismatches are logged and counted, never
// returned as errors.
package check

import (
	"log"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/qrv0/spmvbench/internal/sparse"
)

// keep at most this many mismatches in a Report
const maxKept = 16

// Mismatch is one element that differs at single precision.
type Mismatch struct {
	Index    int     `json:"index"`
	Got      float64 `json:"got"`
	Expected float64 `json:"expected"`
}

// Report summarises one comparison.
type Report struct {
	Checked    int
	Mismatches int
	// MaxAbsErr is the largest |y[i]/reps - ref[i]| over the compared prefix,
	// in double precision.
	MaxAbsErr float64
	First     []Mismatch
}

// OK reports whether every element matched.
func (r Report) OK() bool { return r.Mismatches == 0 }

// Compare divides each y[i] by reps and compares it with ref[i] after both
// are rounded to float32. Every mismatch is written to logger as
// "Got: <v>; Expected: <ref>". Elements present in only one of the vectors
// count as mismatches. A reps value below one is treated as one.
func Compare[T sparse.Float](logger *log.Logger, y []T, reps int, ref []T) Report {
	if reps < 1 {
		reps = 1
	}
	n := min(len(y), len(ref))
	r := Report{Checked: n}
	diff := make([]float64, n)
	for i := 0; i < n; i++ {
		got := float64(y[i]) / float64(reps)
		want := float64(ref[i])
		diff[i] = math.Abs(got - want)
		if float32(got) == float32(want) {
			continue
		}
		r.Mismatches++
		if len(r.First) < maxKept {
			r.First = append(r.First, Mismatch{Index: i, Got: got, Expected: want})
		}
		if logger != nil {
			logger.Printf("Got: %v; Expected: %v (index %d)", got, want, i)
		}
	}
	if n > 0 {
		r.MaxAbsErr = floats.Max(diff)
	}
	if extra := max(len(y), len(ref)) - n; extra > 0 {
		r.Mismatches += extra
		if logger != nil {
			logger.Printf("length mismatch: got %d values, expected %d", len(y), len(ref))
		}
	}
	return r
}
