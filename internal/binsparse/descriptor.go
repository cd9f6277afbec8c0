// Package binsparse loads and stores sparse-matrix benchmark datasets laid
// out as binsparse groups of .npy arrays.
//
// A group is a directory such as A.bspnpy holding binsparse.json and one .npy
// file per array. A dataset is a directory of groups or a .spmb bundle of the
// same tree.
package binsparse

import (
	"encoding/json"
	"fmt"

	"github.com/qrv0/spmvbench/internal/sparse"
)

// Group and array names used by the SpMV benchmark.
const (
	GroupA    = "A.bspnpy"
	GroupX    = "x.bspnpy"
	GroupYRef = "y_ref.bspnpy"
	GroupY    = "y.bspnpy"

	DescriptorFile = "binsparse.json"
	PointersFile   = "pointers_to_1.npy"
	IndicesFile    = "indices_1.npy"
	ValuesFile     = "values.npy"

	FormatCSR   = "CSR"
	FormatDense = "DVEC"

	Version = 0.5
)

// Data type keys inside data_types.
const (
	KeyPointers = "pointers_to_1"
	KeyIndices  = "indices_1"
	KeyValues   = "values"
)

// Descriptor is the "binsparse" object of a group's binsparse.json.
type Descriptor struct {
	Version   float64           `json:"version"`
	Format    string            `json:"format"`
	Shape     []int             `json:"shape"`
	NNZ       int               `json:"nnz"`
	DataTypes map[string]string `json:"data_types"`
}

type envelope struct {
	Binsparse Descriptor `json:"binsparse"`
}

// ParseDescriptor decodes a binsparse.json document.
func ParseDescriptor(b []byte) (Descriptor, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Descriptor{}, fmt.Errorf("binsparse: parse descriptor: %w", err)
	}
	return env.Binsparse, nil
}

// MarshalDescriptor encodes d wrapped in its "binsparse" envelope.
func MarshalDescriptor(d Descriptor) ([]byte, error) {
	return json.MarshalIndent(envelope{Binsparse: d}, "", "  ")
}

// TypeName is the binsparse spelling of a Go element type.
func TypeName[E sparse.Index | sparse.Float]() string {
	var zero E
	switch any(zero).(type) {
	case int32:
		return "int32"
	case int64:
		return "int64"
	case float32:
		return "float32"
	default:
		return "float64"
	}
}

// RequireFormat fails with ErrUnsupportedFormat unless d.Format is want.
func (d Descriptor) RequireFormat(group, want string) error {
	if d.Format == want {
		return nil
	}
	kind := "dense"
	if want == FormatCSR {
		kind = "CSR"
	}
	return fmt.Errorf("%w: %s has format %q; only %s format is supported", ErrUnsupportedFormat, group, d.Format, kind)
}

// requireType fails with ErrUnsupportedType when key is declared with a type
// other than want. Absent keys are accepted.
func (d Descriptor) requireType(group, key, want string) error {
	got, ok := d.DataTypes[key]
	if !ok || got == want {
		return nil
	}
	return fmt.Errorf("%w: %s %s is %q, expected %q", ErrUnsupportedType, group, key, got, want)
}
