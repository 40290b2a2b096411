package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/algo-ftmw/dsp/fid"
	"github.com/cwbudde/algo-ftmw/dsp/spectrum"
	"github.com/cwbudde/algo-ftmw/fit/engine"
	"github.com/cwbudde/algo-ftmw/internal/config"
)

// transformer holds the FFT plans shared by every engine the commands build.
var transformer = spectrum.NewTransformer()

func newEngine(cfg config.File) (*engine.Engine, error) {
	return engine.New(
		engine.WithConfig(cfg.Tolerances),
		engine.WithLogger(logger),
		engine.WithTransformer(transformer),
	)
}

func readFid(path string) (fid.Fid, error) {
	file, err := os.Open(path)
	if err != nil {
		return fid.Fid{}, fmt.Errorf("open fid: %w", err)
	}
	defer file.Close()

	f, err := fid.ReadText(file)
	if err != nil {
		return fid.Fid{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
