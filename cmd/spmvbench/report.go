package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/qrv0/spmvbench/internal/bench"
	"github.com/qrv0/spmvbench/internal/binsparse"
)

func cmdReport() {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	dir := fs.String("dir", "result", "directory searched for measurements.json")
	fs.Parse(os.Args[2:])
	if err := writeReport(os.Stdout, *dir); err != nil {
		fatal("report", err)
	}
}

func writeReport(w io.Writer, root string) error {
	files, err := bench.FindMeasurements(root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s below %s", bench.MeasurementsFile, root)
	}
	for _, f := range files {
		m, err := binsparse.ReadMeasurements(f)
		if err != nil {
			return err
		}
		series, err := bench.Summarize(m)
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		fmt.Fprintf(w, "== %s\n", bench.DatasetName(root, f))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "method\tthreads\truntime_ns\tspeedup")
		for _, s := range series {
			for i, t := range s.Threads {
				fmt.Fprintf(tw, "%s\t%d\t%.0f\t%.2f\n", s.Method, t, s.Runtime[i], s.Speedup[i])
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		for _, s := range series[1:] {
			best, t := s.Best()
			fmt.Fprintf(w, "best %s: %.2fx at %d threads\n", s.Method, best, t)
		}
	}
	return nil
}
