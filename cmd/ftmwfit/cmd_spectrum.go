package main

import (
	"bufio"
	"strconv"

	"github.com/spf13/cobra"
)

var spectrumFlags struct {
	window bool
}

var spectrumCmd = &cobra.Command{
	Use:   "spectrum <fid.txt>",
	Short: "Print the magnitude spectrum as tab-separated MHz and mV columns",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpectrum,
}

func init() {
	spectrumCmd.Flags().BoolVar(&spectrumFlags.window, "window", false, "apply the Blackman-Harris window")
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if spectrumFlags.window {
		cfg.Processing.ApplyWindow = true
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	f, err := readFid(args[0])
	if err != nil {
		return err
	}
	s, err := eng.Spectrum(f, cfg.Processing)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(cmd.OutOrStdout())
	for _, p := range s {
		w.WriteString(strconv.FormatFloat(p.X, 'f', 6, 64))
		w.WriteByte('\t')
		w.WriteString(strconv.FormatFloat(p.Y, 'g', 8, 64))
		w.WriteByte('\n')
	}
	return w.Flush()
}
