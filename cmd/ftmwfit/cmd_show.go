package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ftmw/fit/result"
)

var showFlags struct {
	log    bool
	points int
}

var showCmd = &cobra.Command{
	Use:   "show <result.txt>",
	Short: "Summarize a saved fit result",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	f := showCmd.Flags()
	f.BoolVar(&showFlags.log, "log", false, "also print the audit log")
	f.IntVar(&showFlags.points, "points", 0, "sample the fitted curve at this many points")
}

func runShow(cmd *cobra.Command, args []string) error {
	res, err := result.LoadFile(args[0])
	if err != nil {
		return err
	}
	if err := res.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSummary(out, res)

	if showFlags.points > 1 && res.HasFit() {
		lo, hi := curveRange(res)
		fmt.Fprintln(out)
		for _, p := range res.ToXYRange(lo, hi, showFlags.points) {
			fmt.Fprintf(out, "%.6f\t%.6g\n", p.X, p.Y)
		}
	}
	if showFlags.log {
		fmt.Fprintln(out)
		io.WriteString(out, res.Log)
	}
	return nil
}

// curveRange spans the fitted components plus a margin of ten line widths,
// or ±1 MHz around the probe for a bare baseline.
func curveRange(res result.Result) (lo, hi float64) {
	lo, hi = res.ProbeFreq-1, res.ProbeFreq+1

	var centers []float64
	for _, p := range res.Pairs() {
		centers = append(centers, p.Center.Value)
	}
	for _, s := range res.Singles() {
		centers = append(centers, s.Center.Value)
	}
	if len(centers) == 0 {
		return lo, hi
	}

	margin := 0.05
	if w, ok := res.Width(); ok {
		margin = 10 * w.Value
	}
	if s, ok := res.Splitting(); ok {
		margin += s.Value
	}
	lo, hi = centers[0], centers[0]
	for _, c := range centers[1:] {
		lo, hi = min(lo, c), max(hi, c)
	}
	return lo - margin, hi + margin
}

func printSummary(out io.Writer, res result.Result) {
	fmt.Fprintf(out, "Category:    %s\n", res.Category)
	fmt.Fprintf(out, "Type:        %s\n", res.Type)
	fmt.Fprintf(out, "Lineshape:   %s\n", res.Shape)
	fmt.Fprintf(out, "Probe:       %.4f MHz\n", res.ProbeFreq)
	fmt.Fprintf(out, "Gas:         %s at %g K\n", res.BufferGas, res.Temperature)
	if !res.HasFit() {
		return
	}
	fmt.Fprintf(out, "Solver:      %s after %d iterations, chi2/dof %.4g\n", res.Status, res.Iterations, res.Chisq)

	if y0, slope, ok := res.Baseline(); ok {
		fmt.Fprintf(out, "Baseline:    %.6g ± %.2g + (%.4g ± %.2g)·Δf\n", y0.Value, y0.Uncertainty, slope.Value, slope.Uncertainty)
	}
	if s, ok := res.Splitting(); ok {
		fmt.Fprintf(out, "Splitting:   %.6f ± %.6f MHz\n", s.Value, s.Uncertainty)
	}
	if w, ok := res.Width(); ok {
		fmt.Fprintf(out, "Width:       %.6f ± %.6f MHz\n", w.Value, w.Uncertainty)
	}

	pairs, singles := res.Pairs(), res.Singles()
	if len(pairs)+len(singles) == 0 {
		return
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Kind\tCenter (MHz)\t±\tAmplitude\t±\tAlpha\t±")
	fmt.Fprintln(tw, strings.Join([]string{"----", "------------", "-", "---------", "-", "-----", "-"}, "\t"))
	for _, p := range pairs {
		fmt.Fprintf(tw, "pair\t%.6f\t%.6f\t%.4g\t%.2g\t%.3f\t%.3f\n",
			p.Center.Value, p.Center.Uncertainty, p.Amplitude.Value, p.Amplitude.Uncertainty,
			p.Alpha.Value, p.Alpha.Uncertainty)
	}
	for _, s := range singles {
		fmt.Fprintf(tw, "single\t%.6f\t%.6f\t%.4g\t%.2g\t-\t-\n",
			s.Center.Value, s.Center.Uncertainty, s.Amplitude.Value, s.Amplitude.Uncertainty)
	}
	tw.Flush()
}
