package main

import (
	"fmt"
	"io"
	"os"

	"github.com/qrv0/spmvbench/internal/binsparse"
)

func cmdInspect() {
	if len(os.Args) < 3 {
		fmt.Println("usage: spmvbench inspect <dir|file.spmb>")
		os.Exit(1)
	}
	if err := inspectDataset(os.Stdout, os.Args[2]); err != nil {
		fatal("inspect", err)
	}
}

func inspectDataset(w io.Writer, path string) error {
	ds, err := binsparse.Open(path)
	if err != nil {
		return err
	}
	defer ds.Close()
	if b := ds.Bundle(); b != nil {
		fmt.Fprintf(w, "bundle: format_version=%d files=%d\n", b.Meta.FormatVersion, len(b.Meta.Files))
		for _, f := range b.Meta.Files {
			fmt.Fprintf(w, "  %-32s section=%d size=%d\n", f.Path, f.Section, f.Size)
		}
	}
	for _, g := range []string{binsparse.GroupA, binsparse.GroupX, binsparse.GroupYRef, binsparse.GroupY} {
		if !ds.Has(g) {
			continue
		}
		d, err := ds.Descriptor(g)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: format=%s shape=%v nnz=%d", g, d.Format, d.Shape, d.NNZ)
		for _, k := range []string{binsparse.KeyPointers, binsparse.KeyIndices, binsparse.KeyValues} {
			if t, ok := d.DataTypes[k]; ok {
				fmt.Fprintf(w, " %s=%s", k, t)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
