// Package bench sweeps SpMV strategies over thread counts and records how
// long each takes.
package bench

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/qrv0/spmvbench/internal/hostinfo"
	"github.com/qrv0/spmvbench/internal/spmv"
	"github.com/qrv0/spmvbench/internal/timing"
)

// EnvMaxThreads overrides the default upper bound of the thread sweep.
const EnvMaxThreads = "SPMVBENCH_MAX_THREADS"

var ErrInvalidParams = errors.New("bench: invalid parameters")

// Params configures one run. It is not modified once the run starts.
type Params struct {
	Input      string
	Output     string
	MaxThreads int
	Methods    []string
	MinTime    time.Duration
	MaxReps    int
}

// DefaultParams fills everything except Input and Output.
func DefaultParams() Params {
	return Params{
		MaxThreads: DefaultMaxThreads(),
		Methods:    append([]string(nil), spmv.DefaultMethods...),
		MinTime:    timing.DefaultMinTime,
		MaxReps:    timing.DefaultMaxReps,
	}
}

// DefaultMaxThreads is $SPMVBENCH_MAX_THREADS when it holds a positive
// integer, else the number of CPUs.
func DefaultMaxThreads() int {
	if s := os.Getenv(EnvMaxThreads); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return hostinfo.Detect().Threads()
}

// Validate reports the first problem with p.
func (p Params) Validate() error {
	switch {
	case p.Input == "":
		return fmt.Errorf("%w: input is required", ErrInvalidParams)
	case p.Output == "":
		return fmt.Errorf("%w: output is required", ErrInvalidParams)
	case p.MaxThreads < 1:
		return fmt.Errorf("%w: max threads must be at least 1, got %d", ErrInvalidParams, p.MaxThreads)
	case len(p.Methods) == 0:
		return fmt.Errorf("%w: no methods selected", ErrInvalidParams)
	case p.MinTime < 0:
		return fmt.Errorf("%w: negative min time %v", ErrInvalidParams, p.MinTime)
	case p.MaxReps < 0:
		return fmt.Errorf("%w: negative max reps %d", ErrInvalidParams, p.MaxReps)
	}
	seen := map[string]bool{}
	for _, m := range p.Methods {
		if seen[m] {
			return fmt.Errorf("%w: method %q listed twice", ErrInvalidParams, m)
		}
		seen[m] = true
	}
	return nil
}

func (p Params) harness() timing.Harness {
	return timing.Harness{MinTime: p.MinTime, MaxReps: p.MaxReps}
}
