package binsparse

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/qrv0/spmvbench/internal/npy"
	"github.com/qrv0/spmvbench/internal/sparse"
)

// Measurements maps method name to thread count (decimal string) to
// amortized nanoseconds per repetition.
type Measurements map[string]map[string]int64

// Add records one timing.
func (m Measurements) Add(method string, threads int, ns int64) {
	if m[method] == nil {
		m[method] = map[string]int64{}
	}
	m[method][strconv.Itoa(threads)] = ns
}

// DenseDescriptor describes a dense vector of n elements of T.
func DenseDescriptor[T sparse.Float](n int) Descriptor {
	return Descriptor{
		Version:   Version,
		Format:    FormatDense,
		Shape:     []int{n},
		NNZ:       n,
		DataTypes: map[string]string{KeyValues: TypeName[T]()},
	}
}

// CSRDescriptor describes a.
func CSRDescriptor[T sparse.Float, I sparse.Index](a *sparse.CSR[T, I]) Descriptor {
	return Descriptor{
		Version: Version,
		Format:  FormatCSR,
		Shape:   []int{a.Rows, a.Cols},
		NNZ:     a.NNZ(),
		DataTypes: map[string]string{
			KeyPointers: TypeName[I](),
			KeyIndices:  TypeName[I](),
			KeyValues:   TypeName[T](),
		},
	}
}

func writeDescriptor(dir string, d Descriptor) error {
	b, err := MarshalDescriptor(d)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, DescriptorFile), b, 0o644)
}

// WriteDense stores v as the dense group dir/group.
func WriteDense[T sparse.Float](dir, group string, v []T) error {
	gdir := filepath.Join(dir, group)
	if err := os.MkdirAll(gdir, 0o755); err != nil {
		return fmt.Errorf("binsparse: %w", err)
	}
	if err := writeDescriptor(gdir, DenseDescriptor[T](len(v))); err != nil {
		return fmt.Errorf("binsparse: %s: %w", group, err)
	}
	if err := npy.WriteFile(filepath.Join(gdir, ValuesFile), v); err != nil {
		return fmt.Errorf("binsparse: %s: %w", group, err)
	}
	return nil
}

// WriteCSR stores a as the CSR group dir/group.
func WriteCSR[T sparse.Float, I sparse.Index](dir, group string, a *sparse.CSR[T, I]) error {
	gdir := filepath.Join(dir, group)
	if err := os.MkdirAll(gdir, 0o755); err != nil {
		return fmt.Errorf("binsparse: %w", err)
	}
	if err := writeDescriptor(gdir, CSRDescriptor(a)); err != nil {
		return fmt.Errorf("binsparse: %s: %w", group, err)
	}
	if err := npy.WriteFile(filepath.Join(gdir, PointersFile), a.RowPtr); err != nil {
		return fmt.Errorf("binsparse: %s: %w", group, err)
	}
	if err := npy.WriteFile(filepath.Join(gdir, IndicesFile), a.ColIdx); err != nil {
		return fmt.Errorf("binsparse: %s: %w", group, err)
	}
	if err := npy.WriteFile(filepath.Join(gdir, ValuesFile), a.Values); err != nil {
		return fmt.Errorf("binsparse: %s: %w", group, err)
	}
	return nil
}

// WriteJSON writes v as indented JSON to path, creating parent directories.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// ReadMeasurements decodes a measurements.json file.
func ReadMeasurements(path string) (Measurements, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := Measurements{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("binsparse: %s: %w", path, err)
	}
	return m, nil
}
