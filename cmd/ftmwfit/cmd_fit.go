package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fitFlags struct {
	output    string
	window    bool
	gas       string
	tempK     float64
	lineshape string
	snr       float64
}

var fitCmd = &cobra.Command{
	Use:   "fit <fid.txt>",
	Short: "Analyze a FID and write the fit result",
	Args:  cobra.ExactArgs(1),
	RunE:  runFit,
}

func init() {
	f := fitCmd.Flags()
	f.StringVarP(&fitFlags.output, "output", "o", "", "result file (default: summary only)")
	f.BoolVar(&fitFlags.window, "window", false, "apply the Blackman-Harris window")
	f.StringVar(&fitFlags.gas, "gas", "", "buffer gas name (overrides config)")
	f.Float64Var(&fitFlags.tempK, "temperature", 0, "stagnation temperature in K (overrides config)")
	f.StringVar(&fitFlags.lineshape, "lineshape", "", "lorentzian or gaussian (overrides config)")
	f.Float64Var(&fitFlags.snr, "snr", 0, "peak SNR threshold (overrides config)")
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if fitFlags.window {
		cfg.Processing.ApplyWindow = true
	}
	if fitFlags.gas != "" {
		cfg.Gas.Name = fitFlags.gas
		cfg.Gas.MolarMass, cfg.Gas.Gamma = 0, 0
	}
	if fitFlags.tempK != 0 {
		cfg.Fit.TemperatureK = fitFlags.tempK
	}
	if fitFlags.lineshape != "" {
		cfg.Fit.Lineshape = fitFlags.lineshape
	}
	if fitFlags.snr != 0 {
		cfg.Fit.SNRThreshold = fitFlags.snr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fc, err := cfg.FitConfig()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	f, err := readFid(args[0])
	if err != nil {
		return err
	}
	res, err := eng.Analyze(cmd.Context(), f, fc)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if fitFlags.output != "" {
		if err := res.Save(fitFlags.output); err != nil {
			return err
		}
	}
	printSummary(cmd.OutOrStdout(), res)
	return nil
}
