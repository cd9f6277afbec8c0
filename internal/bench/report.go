package bench

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/qrv0/spmvbench/internal/binsparse"
	"github.com/qrv0/spmvbench/internal/spmv"
)

// Series is one method's runtimes and its speedup over the serial method at
// the same thread count.
type Series struct {
	Method  string
	Threads []int
	Runtime []float64
	Speedup []float64
}

// Best returns the largest speedup and the thread count it was reached at.
func (s Series) Best() (speedup float64, threads int) {
	if len(s.Speedup) == 0 {
		return 0, 0
	}
	i := floats.MaxIdx(s.Speedup)
	return s.Speedup[i], s.Threads[i]
}

// Summarize builds one Series per method, sorted by name with the serial
// method first. Only thread counts the serial method was measured at are
// kept.
func Summarize(m binsparse.Measurements) ([]Series, error) {
	base, ok := m[spmv.Serial]
	if !ok {
		return nil, fmt.Errorf("bench: no %s measurements to compare against", spmv.Serial)
	}
	threads := sortedThreads(base)
	baseline := make([]float64, len(threads))
	for i, t := range threads {
		baseline[i] = float64(base[strconv.Itoa(t)])
	}

	names := make([]string, 0, len(m))
	for name := range m {
		if name != spmv.Serial {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{spmv.Serial}, names...)

	out := make([]Series, 0, len(names))
	for _, name := range names {
		s := Series{Method: name}
		var bl []float64
		for i, t := range threads {
			ns, ok := m[name][strconv.Itoa(t)]
			if !ok || ns <= 0 {
				continue
			}
			s.Threads = append(s.Threads, t)
			s.Runtime = append(s.Runtime, float64(ns))
			bl = append(bl, baseline[i])
		}
		s.Speedup = make([]float64, len(bl))
		copy(s.Speedup, bl)
		floats.Div(s.Speedup, s.Runtime)
		out = append(out, s)
	}
	return out, nil
}

func sortedThreads(byThreads map[string]int64) []int {
	ts := make([]int, 0, len(byThreads))
	for k := range byThreads {
		if t, err := strconv.Atoi(k); err == nil {
			ts = append(ts, t)
		}
	}
	sort.Ints(ts)
	return ts
}

// FindMeasurements returns every measurements.json below root, sorted.
func FindMeasurements(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == MeasurementsFile {
			found = append(found, p)
		}
		return nil
	})
	sort.Strings(found)
	return found, err
}

// DatasetName is the directory of a measurements file relative to root,
// slash-separated.
func DatasetName(root, file string) string {
	rel, err := filepath.Rel(root, filepath.Dir(file))
	if err != nil {
		return filepath.Dir(file)
	}
	return filepath.ToSlash(rel)
}
