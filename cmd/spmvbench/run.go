package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/qrv0/spmvbench/internal/bench"
)

func cmdRun() {
	def := bench.DefaultParams()
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	input := fs.String("input", "", "dataset directory or .spmb bundle")
	output := fs.String("output", "", "result directory")
	maxThreads := fs.Int("max-threads", def.MaxThreads, "largest thread count of the sweep (env "+bench.EnvMaxThreads+")")
	methods := fs.String("methods", strings.Join(def.Methods, ","), "comma-separated methods to run")
	minTime := fs.Duration("min-time", def.MinTime, "minimum accumulated time per trial")
	maxReps := fs.Int("max-reps", def.MaxReps, "maximum repetitions per trial (0 = unlimited)")
	fs.Parse(os.Args[2:])
	if *input == "" || *output == "" {
		fmt.Println("usage: spmvbench run -input <dir|file.spmb> -output <dir> [-max-threads N] [-methods a,b] [-min-time 1s] [-max-reps N]")
		os.Exit(1)
	}
	p := bench.Params{
		Input:      *input,
		Output:     *output,
		MaxThreads: *maxThreads,
		Methods:    splitList(*methods),
		MinTime:    *minTime,
		MaxReps:    *maxReps,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	out, err := bench.Run(ctx, p, log.New(os.Stdout, "", 0))
	if err != nil {
		fatal("run", err)
	}
	if n := out.Table.Mismatches(); n > 0 {
		fmt.Printf("warning: %d values differed from y_ref\n", n)
	}
	fmt.Println("Wrote:", p.Output)
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
