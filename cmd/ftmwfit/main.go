// Command ftmwfit analyzes FTMW free-induction decays.
//
// Usage:
//
//	ftmwfit fit <fid.txt> [-o result.txt] [--config ftmw.yaml] [--window]
//	ftmwfit batch -d <out-dir> [-j jobs] <fid.txt>...
//	ftmwfit spectrum <fid.txt> [--window]
//	ftmwfit show <result.txt> [--points]
//	ftmwfit gases
//
// FID files hold "spacing <s>" and "probe <MHz>" header lines followed by
// one sample per line.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
