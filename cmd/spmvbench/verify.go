package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/qrv0/spmvbench/internal/fileformat"
)

func cmdVerify() {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	in := fs.String("in", "", "input .spmb")
	fs.Parse(os.Args[2:])
	if *in == "" {
		fmt.Println("usage: spmvbench verify -in <file.spmb>")
		os.Exit(1)
	}
	ok, err := verifyBundle(os.Stdout, *in)
	if err != nil {
		fatal("verify", err)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "checksum verify: FAILED")
		os.Exit(3)
	}
	fmt.Println("checksum verify: OK")
}

// verifyBundle prints one line per problem. It returns false when the
// checksums do not match and an error when the bundle cannot be read at all.
func verifyBundle(w io.Writer, path string) (bool, error) {
	b, err := fileformat.OpenBundle(path)
	if err != nil {
		return false, err
	}
	defer b.Close()
	probs, err := b.Verify()
	for _, p := range probs {
		fmt.Fprintln(w, p)
	}
	if errors.Is(err, fileformat.ErrChecksum) {
		return false, nil
	}
	return err == nil, err
}
