// Package spmv computes y += A*x for a CSC matrix with interchangeable
// accumulation strategies.
//
// Every strategy adds into a caller-supplied y of length A.Rows that the
// caller has zeroed. No strategy checks bounds or NaN/Inf inputs.
package spmv

import (
	"fmt"
	"strings"

	"github.com/qrv0/spmvbench/internal/parallel"
	"github.com/qrv0/spmvbench/internal/sparse"
)

// Method names as they appear in measurement reports.
const (
	Serial    = "serial_default_implementation"
	AtomicAdd = "atomic_add"
	Private   = "private_accumulate"
)

// DefaultMethods is the sweep order used when none is requested.
var DefaultMethods = []string{Serial, AtomicAdd}

// Func accumulates a*x into y using at most ctx.Threads workers.
type Func[T sparse.Float, I sparse.Index] func(ctx parallel.Context, a *sparse.CSC[T, I], x, y []T)

// Method is a named strategy.
type Method[T sparse.Float, I sparse.Index] struct {
	Name string
	// Parallel is false for strategies that ignore the thread count.
	Parallel bool
	Run      Func[T, I]
}

// Methods returns every registered strategy in sweep order.
func Methods[T sparse.Float, I sparse.Index]() []Method[T, I] {
	return []Method[T, I]{
		{Name: Serial, Run: MultiplySerial[T, I]},
		{Name: AtomicAdd, Parallel: true, Run: MultiplyAtomic[T, I]},
		{Name: Private, Parallel: true, Run: MultiplyPrivate[T, I]},
	}
}

// Names lists the registered strategy names.
func Names() []string {
	ms := Methods[float64, int64]()
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

// Lookup resolves names to strategies, keeping the requested order.
func Lookup[T sparse.Float, I sparse.Index](names []string) ([]Method[T, I], error) {
	all := Methods[T, I]()
	out := make([]Method[T, I], 0, len(names))
	for _, name := range names {
		found := false
		for _, m := range all {
			if m.Name == name {
				out = append(out, m)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownMethod, name, strings.Join(Names(), ", "))
		}
	}
	return out, nil
}
