// Package timing measures a kernel by running it repeatedly until enough
// wall-clock time has accumulated.
package timing

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

const (
	DefaultMinTime = time.Second
	DefaultMaxReps = 1000

	// MaxSamples bounds Result.Samples.
	MaxSamples = 4096
)

// Harness decides how often a kernel runs.
type Harness struct {
	// MinTime is the accumulated work time after which no further
	// repetition starts.
	MinTime time.Duration
	// MaxReps caps the repetitions; zero means no cap.
	MaxReps int
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Default returns a Harness with DefaultMinTime and DefaultMaxReps.
func Default() Harness {
	return Harness{MinTime: DefaultMinTime, MaxReps: DefaultMaxReps}
}

// Result of one measurement.
type Result struct {
	// Elapsed is the total work time divided by Reps.
	Elapsed time.Duration
	Reps    int
	// Samples holds per-repetition times. Past MaxSamples repetitions it is
	// thinned to every 2^k-th repetition so it stays evenly spread.
	Samples []time.Duration
}

// MeanStdDev returns the mean and sample standard deviation of the
// per-repetition times in nanoseconds.
func (r Result) MeanStdDev() (mean, std float64) {
	if len(r.Samples) == 0 {
		return 0, 0
	}
	ns := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		ns[i] = float64(s.Nanoseconds())
	}
	if len(ns) == 1 {
		return ns[0], 0
	}
	return stat.MeanStdDev(ns, nil)
}

// Run calls setup and then work until the accumulated work time reaches
// MinTime or MaxReps repetitions have run. work runs at least once. Only work
// is timed.
func (h Harness) Run(setup, work func()) Result {
	now := h.Clock
	if now == nil {
		now = time.Now
	}
	var res Result
	var total time.Duration
	stride := 1
	for {
		if setup != nil {
			setup()
		}
		start := now()
		work()
		d := now().Sub(start)
		total += d
		if res.Reps%stride == 0 {
			res.Samples = append(res.Samples, d)
			if len(res.Samples) == MaxSamples {
				res.Samples = thin(res.Samples)
				stride *= 2
			}
		}
		res.Reps++
		if total >= h.MinTime {
			break
		}
		if h.MaxReps > 0 && res.Reps >= h.MaxReps {
			break
		}
	}
	res.Elapsed = total / time.Duration(res.Reps)
	return res
}

// thin keeps the samples at even positions, in place.
func thin(s []time.Duration) []time.Duration {
	n := 0
	for i := 0; i < len(s); i += 2 {
		s[n] = s[i]
		n++
	}
	return s[:n]
}
