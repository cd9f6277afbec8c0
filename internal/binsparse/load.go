package binsparse

import (
	"context"
	"encoding/binary"
	"fmt"
	"path"

	xxh3 "github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/qrv0/spmvbench/internal/npy"
	"github.com/qrv0/spmvbench/internal/sparse"
)

// Problem is everything one SpMV benchmark run consumes.
type Problem[T sparse.Float, I sparse.Index] struct {
	A     *sparse.CSR[T, I]
	X     []T
	YRef  []T
	ADesc Descriptor
	// Fingerprint identifies the exact bytes of A and x.
	Fingerprint uint64
}

// array reads group/name as a vector of E and returns it with the xxh3 hash
// of the stored bytes.
func array[E npy.Elem](src Source, group, name string) ([]E, uint64, error) {
	b, err := src.ReadFile(path.Join(group, name))
	if err != nil {
		return nil, 0, fmt.Errorf("binsparse: %s/%s: %w", group, name, err)
	}
	v, err := npy.Decode[E](b)
	if err != nil {
		return nil, 0, fmt.Errorf("binsparse: %s/%s: %w", group, name, err)
	}
	return v, xxh3.Hash(b), nil
}

// CheckCSR verifies that group describes a CSR matrix whose declared types
// are exactly T and I.
func CheckCSR[T sparse.Float, I sparse.Index](group string, d Descriptor) error {
	if err := d.RequireFormat(group, FormatCSR); err != nil {
		return err
	}
	if err := d.requireType(group, KeyPointers, TypeName[I]()); err != nil {
		return err
	}
	if err := d.requireType(group, KeyIndices, TypeName[I]()); err != nil {
		return err
	}
	if err := d.requireType(group, KeyValues, TypeName[T]()); err != nil {
		return err
	}
	if len(d.Shape) != 2 {
		return fmt.Errorf("%w: %s shape %v is not two-dimensional", ErrShape, group, d.Shape)
	}
	return nil
}

// CheckDense verifies that group describes a dense vector of T.
func CheckDense[T sparse.Float](group string, d Descriptor) error {
	if err := d.RequireFormat(group, FormatDense); err != nil {
		return err
	}
	return d.requireType(group, KeyValues, TypeName[T]())
}

// LoadCSR reads a CSR group. The three arrays are read concurrently and the
// result is structurally validated.
func LoadCSR[T sparse.Float, I sparse.Index](ctx context.Context, ds *Dataset, group string) (*sparse.CSR[T, I], uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	desc, err := ds.Descriptor(group)
	if err != nil {
		return nil, 0, err
	}
	if err := CheckCSR[T, I](group, desc); err != nil {
		return nil, 0, err
	}
	a := &sparse.CSR[T, I]{Rows: desc.Shape[0], Cols: desc.Shape[1]}
	var hashes [3]uint64
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a.RowPtr, hashes[0], err = array[I](ds, group, PointersFile)
		return err
	})
	g.Go(func() (err error) {
		a.ColIdx, hashes[1], err = array[I](ds, group, IndicesFile)
		return err
	})
	g.Go(func() (err error) {
		a.Values, hashes[2], err = array[T](ds, group, ValuesFile)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if err := a.Validate(); err != nil {
		return nil, 0, fmt.Errorf("binsparse: %s: %w", group, err)
	}
	if desc.NNZ != 0 && desc.NNZ != a.NNZ() {
		return nil, 0, fmt.Errorf("%w: %s declares nnz %d, arrays hold %d", ErrShape, group, desc.NNZ, a.NNZ())
	}
	return a, combine(hashes[:]...), nil
}

// LoadDense reads a dense vector group.
func LoadDense[T sparse.Float](ds *Dataset, group string) ([]T, uint64, error) {
	desc, err := ds.Descriptor(group)
	if err != nil {
		return nil, 0, err
	}
	if err := CheckDense[T](group, desc); err != nil {
		return nil, 0, err
	}
	v, h, err := array[T](ds, group, ValuesFile)
	if err != nil {
		return nil, 0, err
	}
	if len(desc.Shape) == 1 && desc.Shape[0] != len(v) {
		return nil, 0, fmt.Errorf("%w: %s declares length %d, array holds %d", ErrShape, group, desc.Shape[0], len(v))
	}
	return v, h, nil
}

// LoadProblem reads A, x and y_ref concurrently and checks that their sizes
// agree.
func LoadProblem[T sparse.Float, I sparse.Index](ctx context.Context, ds *Dataset) (*Problem[T, I], error) {
	p := &Problem[T, I]{}
	var ha, hx uint64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		p.A, ha, err = LoadCSR[T, I](gctx, ds, GroupA)
		return err
	})
	g.Go(func() (err error) {
		p.X, hx, err = LoadDense[T](ds, GroupX)
		return err
	})
	g.Go(func() (err error) {
		p.YRef, _, err = LoadDense[T](ds, GroupYRef)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	desc, err := ds.Descriptor(GroupA)
	if err != nil {
		return nil, err
	}
	p.ADesc = desc
	if len(p.X) != p.A.Cols {
		return nil, fmt.Errorf("%w: x has %d entries, A has %d columns", ErrShape, len(p.X), p.A.Cols)
	}
	if len(p.YRef) != p.A.Rows {
		return nil, fmt.Errorf("%w: y_ref has %d entries, A has %d rows", ErrShape, len(p.YRef), p.A.Rows)
	}
	p.Fingerprint = combine(ha, hx)
	return p, nil
}

func combine(hs ...uint64) uint64 {
	b := make([]byte, 8*len(hs))
	for i, h := range hs {
		binary.LittleEndian.PutUint64(b[8*i:], h)
	}
	return xxh3.Hash(b)
}
