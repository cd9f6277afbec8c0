package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qrv0/spmvbench/internal/binsparse"
	"github.com/qrv0/spmvbench/internal/fileformat"
	"github.com/qrv0/spmvbench/internal/sparse"
)

func writeDataset(t *testing.T, dir string) {
	t.Helper()
	a := &sparse.CSR[float64, int32]{
		Rows: 2, Cols: 2,
		RowPtr: []int32{0, 1, 2},
		ColIdx: []int32{0, 1},
		Values: []float64{2, 3},
	}
	require.NoError(t, binsparse.WriteCSR(dir, binsparse.GroupA, a))
	require.NoError(t, binsparse.WriteDense(dir, binsparse.GroupX, []float64{1, 1}))
	require.NoError(t, binsparse.WriteDense(dir, binsparse.GroupYRef, []float64{2, 3}))
}

func TestVerifyBundle(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "graph")
	writeDataset(t, src)
	path := filepath.Join(dir, "graph.spmb")
	_, err := fileformat.Pack(src, path, 0)
	require.NoError(t, err)

	var out bytes.Buffer
	ok, err := verifyBundle(&out, path)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, out.String())

	// flip one payload byte of an uncompressed section
	b, err := fileformat.OpenBundle(path)
	require.NoError(t, err)
	data, err := b.ReadFile(binsparse.GroupX + "/" + binsparse.ValuesFile)
	require.NoError(t, err)
	b.Close()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	at := bytes.Index(raw, data)
	require.Positive(t, at)
	raw[at+len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	out.Reset()
	ok, err = verifyBundle(&out, path)
	require.NoError(t, err)
	require.False(t, ok)
	require.Contains(t, out.String(), "x.bspnpy/values.npy: chunk 0 mismatch")
}

func TestVerifyNotABundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.spmb")
	require.NoError(t, os.WriteFile(path, []byte("not a bundle at all"), 0o644))
	_, err := verifyBundle(&bytes.Buffer{}, path)
	require.Error(t, err)
}
