package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ftmw/measure/doppler"
)

var gasesFlags struct {
	tempK float64
	freq  float64
}

var gasesCmd = &cobra.Command{
	Use:   "gases",
	Short: "List the built-in buffer gases",
	Args:  cobra.NoArgs,
	RunE:  runGases,
}

func init() {
	f := gasesCmd.Flags()
	f.Float64Var(&gasesFlags.tempK, "temperature", 298, "stagnation temperature in K")
	f.Float64Var(&gasesFlags.freq, "freq", 10000, "line frequency in MHz for the splitting column")
}

func runGases(cmd *cobra.Command, _ []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Gas\tM (g/mol)\tgamma\tv_jet (m/s)\tsplitting @ %g MHz (kHz)\n", gasesFlags.freq)
	fmt.Fprintln(tw, "---\t---------\t-----\t-----------\t-----------------------")
	for _, g := range doppler.KnownGases() {
		fmt.Fprintf(tw, "%s\t%.4f\t%.3f\t%.0f\t%.2f\n",
			g.Name, g.MolarMass, g.Gamma,
			g.JetVelocity(gasesFlags.tempK),
			1e3*g.Splitting(gasesFlags.freq, gasesFlags.tempK))
	}
	return tw.Flush()
}
