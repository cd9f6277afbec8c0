package bench

import (
	"context"
	"log"
	"time"

	"github.com/qrv0/spmvbench/internal/binsparse"
	"github.com/qrv0/spmvbench/internal/check"
	"github.com/qrv0/spmvbench/internal/parallel"
	"github.com/qrv0/spmvbench/internal/sparse"
	"github.com/qrv0/spmvbench/internal/spmv"
	"github.com/qrv0/spmvbench/internal/timing"
)

// Sample is the outcome of one (method, threads) trial.
type Sample struct {
	Method  string        `json:"method"`
	Threads int           `json:"threads"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Reps    int           `json:"reps"`
	// MeanNs and StdDevNs summarise the per-repetition times.
	MeanNs     float64 `json:"mean_ns"`
	StdDevNs   float64 `json:"stddev_ns"`
	Mismatches int     `json:"mismatches"`
	// MaxAbsErr is the largest |y[i]/reps - y_ref[i]|.
	MaxAbsErr       float64          `json:"max_abs_err"`
	FirstMismatches []check.Mismatch `json:"first_mismatches,omitempty"`
}

// Table holds samples in the order they were taken.
type Table []Sample

// Measurements converts t into the measurements.json layout.
func (t Table) Measurements() binsparse.Measurements {
	m := binsparse.Measurements{}
	for _, s := range t {
		m.Add(s.Method, s.Threads, s.Elapsed.Nanoseconds())
	}
	return m
}

// Mismatches sums the mismatch counts of all samples.
func (t Table) Mismatches() int {
	n := 0
	for _, s := range t {
		n += s.Mismatches
	}
	return n
}

// Driver runs the thread sweep for one problem.
type Driver[T sparse.Float, I sparse.Index] struct {
	// Name labels progress lines, normally the input path.
	Name       string
	A          *sparse.CSC[T, I]
	X          []T
	YRef       []T
	Methods    []spmv.Method[T, I]
	MaxThreads int
	Harness    timing.Harness
	Logger     *log.Logger
}

// Result is the sweep outcome. Y holds the accumulated output of the final
// trial.
type Result[T sparse.Float] struct {
	Y     []T
	Table Table
}

// NewDriver converts the problem matrix to CSC once and resolves p.Methods.
func NewDriver[T sparse.Float, I sparse.Index](p Params, prob *binsparse.Problem[T, I], logger *log.Logger) (*Driver[T, I], error) {
	methods, err := spmv.Lookup[T, I](p.Methods)
	if err != nil {
		return nil, err
	}
	return &Driver[T, I]{
		Name:       p.Input,
		A:          sparse.ToCSC(prob.A),
		X:          prob.X,
		YRef:       prob.YRef,
		Methods:    methods,
		MaxThreads: p.MaxThreads,
		Harness:    p.harness(),
		Logger:     logger,
	}, nil
}

// Run executes every method for every thread count from 1 to MaxThreads.
// Cancellation is checked between trials.
func (d *Driver[T, I]) Run(ctx context.Context) (*Result[T], error) {
	y := make([]T, d.A.Rows)
	table := make(Table, 0, d.MaxThreads*len(d.Methods))
	for threads := 1; threads <= d.MaxThreads; threads++ {
		d.logf("Running %s with %d threads", d.Name, threads)
		pc := parallel.Context{Threads: threads}
		for _, m := range d.Methods {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			clear(y)
			res := d.Harness.Run(nil, func() { m.Run(pc, d.A, d.X, y) })
			rep := check.Compare(d.Logger, y, res.Reps, d.YRef)
			mean, std := res.MeanStdDev()
			table = append(table, Sample{
				Method:          m.Name,
				Threads:         threads,
				Elapsed:         res.Elapsed,
				Reps:            res.Reps,
				MeanNs:          mean,
				StdDevNs:        std,
				Mismatches:      rep.Mismatches,
				MaxAbsErr:       rep.MaxAbsErr,
				FirstMismatches: rep.First,
			})
			d.logf("Runtime for %s: %d", m.Name, res.Elapsed.Nanoseconds())
		}
	}
	if n := table.Mismatches(); n > 0 {
		d.logf("%d mismatching values across %d trials", n, len(table))
	}
	return &Result[T]{Y: y, Table: table}, nil
}

func (d *Driver[T, I]) logf(format string, args ...any) {
	if d.Logger != nil {
		d.Logger.Printf(format, args...)
	}
}
