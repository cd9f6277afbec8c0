package bench

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qrv0/spmvbench/internal/binsparse"
	"github.com/qrv0/spmvbench/internal/sparse"
	"github.com/qrv0/spmvbench/internal/spmv"
	"github.com/qrv0/spmvbench/internal/timing"
)

// 3x3 tridiagonal with small integers so every strategy is exact.
func problem() *binsparse.Problem[float64, int64] {
	a := &sparse.CSR[float64, int64]{
		Rows: 3, Cols: 3,
		RowPtr: []int64{0, 2, 5, 7},
		ColIdx: []int64{0, 1, 0, 1, 2, 1, 2},
		Values: []float64{2, 1, 1, 2, 1, 1, 2},
	}
	x := []float64{1, 2, 3}
	yref := make([]float64, 3)
	a.MulVec(yref, x)
	return &binsparse.Problem[float64, int64]{A: a, X: x, YRef: yref}
}

func params(dir string) Params {
	return Params{
		Input:      filepath.Join(dir, "in"),
		Output:     filepath.Join(dir, "out"),
		MaxThreads: 3,
		Methods:    []string{spmv.Serial, spmv.AtomicAdd, spmv.Private},
		MinTime:    time.Hour,
		MaxReps:    4,
	}
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, params("x").Validate())

	for name, mut := range map[string]func(*Params){
		"no input":     func(p *Params) { p.Input = "" },
		"no output":    func(p *Params) { p.Output = "" },
		"zero threads": func(p *Params) { p.MaxThreads = 0 },
		"no methods":   func(p *Params) { p.Methods = nil },
		"dup method":   func(p *Params) { p.Methods = []string{spmv.Serial, spmv.Serial} },
		"neg reps":     func(p *Params) { p.MaxReps = -1 },
		"neg min time": func(p *Params) { p.MinTime = -time.Second },
	} {
		t.Run(name, func(t *testing.T) {
			p := params("x")
			mut(&p)
			require.True(t, errors.Is(p.Validate(), ErrInvalidParams))
		})
	}
}

func TestDefaultMaxThreadsEnv(t *testing.T) {
	t.Setenv(EnvMaxThreads, "5")
	require.Equal(t, 5, DefaultMaxThreads())
	t.Setenv(EnvMaxThreads, "junk")
	require.Positive(t, DefaultMaxThreads())
	require.Equal(t, spmv.DefaultMethods, DefaultParams().Methods)
}

func TestDriverSweep(t *testing.T) {
	var buf bytes.Buffer
	p := params(t.TempDir())
	d, err := NewDriver(p, problem(), log.New(&buf, "", 0))
	require.NoError(t, err)

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Table, 9)
	for i, s := range res.Table {
		require.Equal(t, i/3+1, s.Threads)
		require.Equal(t, p.Methods[i%3], s.Method)
		require.Equal(t, 4, s.Reps)
		require.Zero(t, s.Mismatches)
		require.Zero(t, s.MaxAbsErr)
		require.Empty(t, s.FirstMismatches)
	}
	require.Zero(t, res.Table.Mismatches())

	// y is zeroed per trial, so the last one holds exactly reps * y_ref.
	want := make([]float64, 3)
	for i, v := range problem().YRef {
		want[i] = 4 * v
	}
	require.Equal(t, want, res.Y)

	out := buf.String()
	require.Contains(t, out, "Running "+p.Input+" with 1 threads\n")
	require.Contains(t, out, "Running "+p.Input+" with 3 threads\n")
	require.Equal(t, 9, strings.Count(out, "Runtime for "))
	require.NotContains(t, out, "Got:")

	m := res.Table.Measurements()
	require.Len(t, m, 3)
	require.Len(t, m[spmv.AtomicAdd], 3)
	require.Contains(t, m[spmv.Serial], "2")
}

func TestDriverReportsMismatches(t *testing.T) {
	var buf bytes.Buffer
	prob := problem()
	prob.YRef[1] += 1
	p := params(t.TempDir())
	p.MaxThreads = 1
	p.Methods = []string{spmv.Serial}
	d, err := NewDriver(p, prob, log.New(&buf, "", 0))
	require.NoError(t, err)

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	s := res.Table[0]
	require.Equal(t, 1, s.Mismatches)
	require.Equal(t, 1.0, s.MaxAbsErr)
	require.Len(t, s.FirstMismatches, 1)
	require.Equal(t, 1, s.FirstMismatches[0].Index)
	require.Equal(t, prob.YRef[1], s.FirstMismatches[0].Expected)
	require.Contains(t, buf.String(), "Got: ")
	require.Contains(t, buf.String(), "1 mismatching values across 1 trials")
}

func TestDriverUnknownMethod(t *testing.T) {
	p := params(t.TempDir())
	p.Methods = []string{"gpu"}
	_, err := NewDriver(p, problem(), nil)
	require.True(t, errors.Is(err, spmv.ErrUnknownMethod))
}

func TestDriverCancelled(t *testing.T) {
	d, err := NewDriver(params(t.TempDir()), problem(), nil)
	require.NoError(t, err)
	d.Harness = timing.Harness{MaxReps: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDispatch(t *testing.T) {
	for _, idx := range []string{"int32", "int64"} {
		for _, val := range []string{"float32", "float64"} {
			e, err := Dispatch(binsparse.Descriptor{DataTypes: map[string]string{
				binsparse.KeyPointers: idx, binsparse.KeyValues: val,
			}})
			require.NoError(t, err)
			require.Equal(t, idx, e.IndexType())
			require.Equal(t, val, e.ValueType())
		}
	}
	_, err := Dispatch(binsparse.Descriptor{DataTypes: map[string]string{
		binsparse.KeyPointers: "uint16", binsparse.KeyValues: "float64",
	}})
	require.True(t, errors.Is(err, binsparse.ErrUnsupportedType))
	require.Contains(t, err.Error(), "uint16")
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	p := params(dir)
	p.Methods = spmv.DefaultMethods
	p.MaxThreads = 2

	a := &sparse.CSR[float32, int32]{
		Rows: 2, Cols: 2,
		RowPtr: []int32{0, 1, 2},
		ColIdx: []int32{1, 0},
		Values: []float32{3, 5},
	}
	require.NoError(t, binsparse.WriteCSR(p.Input, binsparse.GroupA, a))
	require.NoError(t, binsparse.WriteDense(p.Input, binsparse.GroupX, []float32{1, 2}))
	require.NoError(t, binsparse.WriteDense(p.Input, binsparse.GroupYRef, []float32{6, 5}))

	out, err := Run(context.Background(), p, log.New(&bytes.Buffer{}, "", 0))
	require.NoError(t, err)
	require.Equal(t, "int32", out.Info.IndexType)
	require.Equal(t, "float32", out.Info.ValueType)
	require.Equal(t, []int{2, 2}, out.Info.Shape)
	require.Len(t, out.Info.Fingerprint, 16)

	m, err := binsparse.ReadMeasurements(filepath.Join(p.Output, MeasurementsFile))
	require.NoError(t, err)
	require.Len(t, m, 2)
	require.Len(t, m[spmv.Serial], 2)

	ds, err := binsparse.Open(p.Output)
	require.NoError(t, err)
	defer ds.Close()
	y, _, err := binsparse.LoadDense[float32](ds, binsparse.GroupY)
	require.NoError(t, err)
	require.Equal(t, []float32{24, 20}, y)

	b, err := os.ReadFile(filepath.Join(p.Output, RunFile))
	require.NoError(t, err)
	var info struct {
		Samples []map[string]any `json:"samples"`
	}
	require.NoError(t, json.Unmarshal(b, &info))
	require.Len(t, info.Samples, 4)
	require.Contains(t, info.Samples[0], "max_abs_err")
	require.NotContains(t, info.Samples[0], "first_mismatches")
}

func TestRunWritesNothingOnLoadFailure(t *testing.T) {
	dir := t.TempDir()
	p := params(dir)
	a := &sparse.CSR[float64, int64]{Rows: 1, Cols: 1, RowPtr: []int64{0, 1}, ColIdx: []int64{0}, Values: []float64{1}}
	require.NoError(t, binsparse.WriteCSR(p.Input, binsparse.GroupA, a))
	require.NoError(t, binsparse.WriteDense(p.Input, binsparse.GroupX, []float32{1}))
	require.NoError(t, binsparse.WriteDense(p.Input, binsparse.GroupYRef, []float64{1}))

	_, err := Run(context.Background(), p, nil)
	require.True(t, errors.Is(err, binsparse.ErrUnsupportedType))
	_, err = os.Stat(p.Output)
	require.True(t, os.IsNotExist(err))
}
