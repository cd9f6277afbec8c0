package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qrv0/spmvbench/internal/binsparse"
	"github.com/qrv0/spmvbench/internal/downloader"
)

const bundleExt = ".spmb"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "run":
		cmdRun()
	case "list":
		cmdList()
	case "inspect":
		cmdInspect()
	case "pack":
		cmdPack()
	case "unpack":
		cmdUnpack()
	case "verify":
		cmdVerify()
	case "report":
		cmdReport()
	case "pull":
		cmdPull()
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("spmvbench - CSR to CSC conversion and parallel SpMV benchmark")
	fmt.Println("usage: spmvbench <command> [args]")
	fmt.Println("  run     -input <dir|file.spmb> -output <dir> [-max-threads N] [-methods a,b] [-min-time 1s] [-max-reps N]")
	fmt.Println("  list    [-dir DIR]                       list datasets below DIR")
	fmt.Println("  inspect <dir|file.spmb>                  show descriptors of a dataset")
	fmt.Println("  pack    -in <dir> -out <file.spmb> [-codec zstd|lz4|none]")
	fmt.Println("  unpack  -in <file.spmb> -out <dir>")
	fmt.Println("  verify  -in <file.spmb>                  verify bundle checksums")
	fmt.Println("  report  [-dir result]                    speedup over the serial method")
	fmt.Println("  pull    <url> [-dir DIR]                 download a dataset bundle")
}

// fatal prints "<cmd>: <err>" and exits with status 1.
func fatal(cmd string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
	os.Exit(1)
}

func cmdList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dir := fs.String("dir", ".", "directory to search")
	fs.Parse(os.Args[2:])
	found, err := listDatasets(*dir)
	if err != nil {
		fatal("list", err)
	}
	for _, p := range found {
		fmt.Println(p)
	}
}

// listDatasets returns directories holding an A.bspnpy group and .spmb
// files below root.
func listDatasets(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasSuffix(d.Name(), ".bspnpy") {
				return filepath.SkipDir
			}
			if _, err := os.Stat(filepath.Join(p, binsparse.GroupA, binsparse.DescriptorFile)); err == nil {
				found = append(found, p)
			}
			return nil
		}
		if filepath.Ext(p) == bundleExt {
			found = append(found, p)
		}
		return nil
	})
	sort.Strings(found)
	return found, err
}

func cmdPull() {
	fs := flag.NewFlagSet("pull", flag.ExitOnError)
	dir := fs.String("dir", "datasets", "destination directory")
	fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("usage: spmvbench pull <url> [-dir DIR]")
		os.Exit(1)
	}
	out, n, err := pull(context.Background(), fs.Arg(0), *dir)
	if err != nil {
		fatal("pull", err)
	}
	fmt.Printf("Downloaded: %s (%d bytes)\n", out, n)
}

// pull downloads url into dir, creating dir first.
func pull(ctx context.Context, url, dir string) (string, int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}
	out := filepath.Join(dir, filepath.Base(url))
	n, err := downloader.Download(ctx, url, out)
	if err != nil {
		return "", 0, err
	}
	return out, n, nil
}
