package bench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qrv0/spmvbench/internal/binsparse"
	"github.com/qrv0/spmvbench/internal/spmv"
)

func TestSummarize(t *testing.T) {
	m := binsparse.Measurements{}
	m.Add(spmv.Serial, 1, 1000)
	m.Add(spmv.Serial, 2, 1000)
	m.Add(spmv.Serial, 4, 800)
	m.Add(spmv.AtomicAdd, 1, 2000)
	m.Add(spmv.AtomicAdd, 2, 500)
	m.Add(spmv.AtomicAdd, 4, 200)
	m.Add(spmv.AtomicAdd, 8, 100) // no baseline, dropped

	ss, err := Summarize(m)
	require.NoError(t, err)
	require.Len(t, ss, 2)
	require.Equal(t, spmv.Serial, ss[0].Method)
	require.Equal(t, []float64{1, 1, 1}, ss[0].Speedup)

	at := ss[1]
	require.Equal(t, []int{1, 2, 4}, at.Threads)
	require.Equal(t, []float64{0.5, 2, 4}, at.Speedup)
	best, threads := at.Best()
	require.Equal(t, 4.0, best)
	require.Equal(t, 4, threads)
}

func TestSummarizeNeedsSerial(t *testing.T) {
	m := binsparse.Measurements{}
	m.Add(spmv.AtomicAdd, 1, 10)
	_, err := Summarize(m)
	require.Error(t, err)
}

func TestFindMeasurements(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"b/graph", "a", "c/none"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	m := binsparse.Measurements{}
	m.Add(spmv.Serial, 1, 1)
	require.NoError(t, binsparse.WriteJSON(filepath.Join(root, "b/graph", MeasurementsFile), m))
	require.NoError(t, binsparse.WriteJSON(filepath.Join(root, "a", MeasurementsFile), m))

	found, err := FindMeasurements(root)
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, "a", DatasetName(root, found[0]))
	require.Equal(t, "b/graph", DatasetName(root, found[1]))
}
