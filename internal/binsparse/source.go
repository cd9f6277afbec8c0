package binsparse

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/qrv0/spmvbench/internal/fileformat"
)

// Source resolves dataset-relative, slash-separated file names.
type Source interface {
	ReadFile(name string) ([]byte, error)
}

// Dir is a dataset stored as a directory tree.
type Dir string

func (d Dir) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(string(d), filepath.FromSlash(name)))
}

// Dataset is an open dataset directory or bundle.
type Dataset struct {
	Path string
	Source
	bundle *fileformat.Bundle
}

// Open opens a dataset. Regular files are read as .spmb bundles, anything
// else as a directory.
func Open(p string) (*Dataset, error) {
	st, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("binsparse: open dataset: %w", err)
	}
	if st.IsDir() {
		return &Dataset{Path: p, Source: Dir(p)}, nil
	}
	b, err := fileformat.OpenBundle(p)
	if err != nil {
		return nil, fmt.Errorf("binsparse: open dataset: %w", err)
	}
	return &Dataset{Path: p, Source: b, bundle: b}, nil
}

// Close releases the bundle file, if any.
func (d *Dataset) Close() error {
	if d.bundle != nil {
		return d.bundle.Close()
	}
	return nil
}

// Bundle returns the underlying bundle or nil for directories.
func (d *Dataset) Bundle() *fileformat.Bundle { return d.bundle }

// Descriptor reads the binsparse.json of group.
func (d *Dataset) Descriptor(group string) (Descriptor, error) {
	b, err := d.ReadFile(path.Join(group, DescriptorFile))
	if err != nil {
		return Descriptor{}, fmt.Errorf("binsparse: %s: %w", group, err)
	}
	desc, err := ParseDescriptor(b)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", group, err)
	}
	return desc, nil
}

// Has reports whether group has a readable descriptor.
func (d *Dataset) Has(group string) bool {
	_, err := d.ReadFile(path.Join(group, DescriptorFile))
	return err == nil
}
