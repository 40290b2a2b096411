package fid

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadText parses a plain-text record: "spacing <seconds>" and
// "probe <MHz>" header lines followed by one sample per line. Blank lines
// and lines starting with '#' are ignored.
func ReadText(r io.Reader) (Fid, error) {
	var (
		spacing, probe float64
		haveSpacing    bool
		samples        []float64
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		switch strings.ToLower(fields[0]) {
		case "spacing", "probe":
			if len(fields) != 2 {
				return Fid{}, fmt.Errorf("%w: line %d: expected key and value", ErrMalformed, line)
			}
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return Fid{}, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
			}
			if strings.EqualFold(fields[0], "spacing") {
				spacing, haveSpacing = v, true
			} else {
				probe = v
			}
		default:
			v, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return Fid{}, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
			}
			samples = append(samples, v)
		}
	}
	if err := sc.Err(); err != nil {
		return Fid{}, fmt.Errorf("read fid: %w", err)
	}
	if !haveSpacing {
		return Fid{}, fmt.Errorf("%w: missing spacing header", ErrMalformed)
	}

	return Fid{spacing: spacing, probeFreq: probe, samples: samples}, nil
}

// WriteText writes f in the format read by ReadText.
func WriteText(w io.Writer, f Fid) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "spacing %s\n", strconv.FormatFloat(f.spacing, 'g', -1, 64))
	fmt.Fprintf(bw, "probe %s\n", strconv.FormatFloat(f.probeFreq, 'g', -1, 64))
	for _, v := range f.samples {
		bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		bw.WriteByte('\n')
	}

	return bw.Flush()
}
