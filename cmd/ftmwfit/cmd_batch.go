package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-ftmw/fit/result"
)

var batchFlags struct {
	outDir string
	jobs   int
	window bool
}

var batchCmd = &cobra.Command{
	Use:   "batch <fid.txt>...",
	Short: "Analyze several FIDs concurrently, one result file each",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVarP(&batchFlags.outDir, "out-dir", "d", "", "directory for <name>.fit.txt results (required)")
	f.IntVarP(&batchFlags.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "concurrent analyses")
	f.BoolVar(&batchFlags.window, "window", false, "apply the Blackman-Harris window")

	_ = batchCmd.MarkFlagRequired("out-dir")
}

type batchEntry struct {
	input  string
	output string
	res    result.Result
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if batchFlags.window {
		cfg.Processing.ApplyWindow = true
	}
	fc, err := cfg.FitConfig()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(batchFlags.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	outputs := make([]string, len(args))
	seen := make(map[string]string, len(args))
	for i, in := range args {
		name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".fit.txt"
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("%s and %s both map to %s", prev, in, name)
		}
		seen[name] = in
		outputs[i] = filepath.Join(batchFlags.outDir, name)
	}

	entries := make([]batchEntry, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(1, batchFlags.jobs))
	for i, in := range args {
		g.Go(func() error {
			f, err := readFid(in)
			if err != nil {
				return err
			}
			res, err := eng.Analyze(ctx, f, fc)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}

			out := outputs[i]
			if err := res.Save(out); err != nil {
				return err
			}
			logger.Debug("batch entry done", zap.String("input", in), zap.Stringer("category", res.Category))
			entries[i] = batchEntry{input: in, output: out, res: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Input\tCategory\tType\tPairs\tSingles\tResult")
	fmt.Fprintln(tw, "-----\t--------\t----\t-----\t-------\t------")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			e.input, e.res.Category, e.res.Type, len(e.res.Pairs()), len(e.res.Singles()), e.output)
	}
	return tw.Flush()
}
