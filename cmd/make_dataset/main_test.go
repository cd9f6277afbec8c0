package main

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qrv0/spmvbench/internal/binsparse"
)

func TestGenerate(t *testing.T) {
	a, x := generate[float32, int32](rand.New(rand.NewSource(3)), 40, 30, 0.2)
	require.NoError(t, a.Validate())
	require.Len(t, x, 30)
	require.Positive(t, a.NNZ())
	require.Less(t, a.NNZ(), 40*30)
}

func TestWriteLoads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, write[float64, int64](dir, 20, 25, 0.3, 7))
	ds, err := binsparse.Open(dir)
	require.NoError(t, err)
	defer ds.Close()
	p, err := binsparse.LoadProblem[float64, int64](context.Background(), ds)
	require.NoError(t, err)
	require.Equal(t, 20, p.A.Rows)
	require.Equal(t, 25, p.A.Cols)
	require.Len(t, p.YRef, 20)
}
