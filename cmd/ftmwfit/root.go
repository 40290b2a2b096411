package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cwbudde/algo-ftmw/internal/config"
	"github.com/cwbudde/algo-ftmw/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	debug      bool
	jsonLog    bool
	logFile    string
}

// logger is built once the persistent flags are parsed.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "ftmwfit",
	Short: "Automatic FTMW FID analysis",
	Long: "ftmwfit transforms free-induction decays into magnitude spectra and fits\n" +
		"Doppler-split and single lines with a Levenberg-Marquardt solver.",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogger,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "YAML configuration file")
	f.StringVar(&rootFlags.logLevel, "log-level", "warn", "minimum log level (debug, info, warn, error)")
	f.BoolVar(&rootFlags.debug, "debug", false, "shorthand for --log-level=debug")
	f.BoolVar(&rootFlags.jsonLog, "json-log", false, "log JSON lines instead of console text")
	f.StringVar(&rootFlags.logFile, "log-file", "", "append JSON logs to this rotated file instead of stderr")

	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(spectrumCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(gasesCmd)
	rootCmd.Version = version
}

func setupLogger(_ *cobra.Command, _ []string) error {
	lvl := zapcore.DebugLevel
	if !rootFlags.debug {
		var err error
		if lvl, err = logging.ParseLevel(rootFlags.logLevel); err != nil {
			return err
		}
	}

	switch {
	case rootFlags.logFile != "":
		logger = logging.NewFile(rootFlags.logFile, lvl)
	case rootFlags.jsonLog:
		l, err := logging.New(lvl)
		if err != nil {
			return err
		}
		logger = l
	default:
		l, err := logging.NewConsole(lvl)
		if err != nil {
			return err
		}
		logger = l
	}
	return nil
}

func loadConfig() (config.File, error) {
	return config.LoadFile(rootFlags.configPath)
}
