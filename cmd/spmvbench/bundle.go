package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/qrv0/spmvbench/internal/fileformat"
)

func cmdPack() {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	in := fs.String("in", "", "dataset directory")
	out := fs.String("out", "", "output .spmb")
	codec := fs.String("codec", "zstd", "section compression: zstd, lz4 or none")
	fs.Parse(os.Args[2:])
	if *in == "" || *out == "" {
		fmt.Println("usage: spmvbench pack -in <dir> -out <file.spmb> [-codec zstd|lz4|none]")
		os.Exit(1)
	}
	flags, err := fileformat.CodecFlags(*codec)
	if err != nil {
		fatal("pack", err)
	}
	meta, err := fileformat.Pack(*in, *out, flags)
	if err != nil {
		fatal("pack", err)
	}
	fmt.Printf("Packed %d files into %s\n", len(meta.Files), *out)
}

func cmdUnpack() {
	fs := flag.NewFlagSet("unpack", flag.ExitOnError)
	in := fs.String("in", "", "input .spmb")
	out := fs.String("out", "", "output directory")
	fs.Parse(os.Args[2:])
	if *in == "" || *out == "" {
		fmt.Println("usage: spmvbench unpack -in <file.spmb> -out <dir>")
		os.Exit(1)
	}
	b, err := fileformat.OpenBundle(*in)
	if err != nil {
		fatal("unpack", err)
	}
	defer b.Close()
	if err := b.Unpack(*out); err != nil {
		fatal("unpack", err)
	}
	fmt.Printf("Unpacked %d files into %s\n", len(b.Meta.Files), *out)
}
