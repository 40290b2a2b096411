package result

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-ftmw/fit/lineshape"
	"github.com/cwbudde/algo-ftmw/fit/lm"
)

// ErrMalformed is returned by Load when the ParameterList block is absent.
var ErrMalformed = errors.New("result: malformed result file")

const (
	keyParameterList = "ParameterList"
	logMarker        = "[log]"
)

// WriteTo writes the result in its text form. It implements io.WriterTo.
func (r Result) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	kv := func(key, value string) {
		buf.WriteString(key)
		buf.WriteByte('\t')
		buf.WriteString(value)
		buf.WriteByte('\n')
	}

	kv("FitType", r.Type.String())
	kv("Category", r.Category.String())
	kv("Lineshape", r.Shape.String())
	kv("Status", r.Status.String())
	kv("Iterations", strconv.Itoa(r.Iterations))
	kv("Chisq", formatFloat(r.Chisq))
	kv("ProbeFreq", formatFloat(r.ProbeFreq))
	kv("NumParams", strconv.Itoa(len(r.Params)))
	kv("Delay", formatFloat(r.Processing.DelayUs))
	kv("HighPass", formatFloat(r.Processing.HighPassKHz))
	kv("Exp", formatFloat(r.Processing.ExpDecayUs))
	kv("RemoveDC", strconv.FormatBool(r.Processing.RemoveDC))
	kv("ZeroPad", strconv.FormatBool(r.Processing.ZeroPad))
	kv("UseWindow", strconv.FormatBool(r.Processing.ApplyWindow))
	kv("SinglePeaks", strconv.Itoa(r.NumSingles))
	kv("BufferGas", r.BufferGas)
	kv("Temperature", formatFloat(r.Temperature))

	buf.WriteString(keyParameterList)
	buf.WriteByte('\n')
	for i, p := range r.Params {
		u := math.NaN()
		if i < len(r.Uncertainties) {
			u = r.Uncertainties[i]
		}
		buf.WriteString(formatFloat(p))
		buf.WriteByte('\t')
		buf.WriteString(formatFloat(u))
		buf.WriteByte('\n')
	}

	buf.WriteString(logMarker)
	buf.WriteByte('\n')
	buf.WriteString(r.Log)

	return buf.WriteTo(w)
}

// Save writes the result to path.
func (r Result) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("result: save: %w", err)
	}

	bw := bufio.NewWriter(f)
	if _, err := r.WriteTo(bw); err != nil {
		f.Close()
		return fmt.Errorf("result: save %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("result: save %s: %w", path, err)
	}
	return f.Close()
}

// LoadFile reads a result written by Save.
func LoadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("result: load: %w", err)
	}
	defer f.Close()

	r, err := Load(f)
	if err != nil {
		return Result{}, fmt.Errorf("result: load %s: %w", path, err)
	}
	return r, nil
}

// Load parses the text form. Unknown keys and unparsable values are ignored;
// missing keys leave Iterations at -1 and the float fields at NaN.
func Load(rd io.Reader) (Result, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return Result{}, fmt.Errorf("result: read: %w", err)
	}

	head, log := splitLog(string(data))
	head = strings.ReplaceAll(head, "\r\n", "\n")

	r := Result{
		Type:        TypeNone,
		Category:    Invalid,
		Shape:       lineshape.Lorentzian,
		Status:      lm.StatusSuccess,
		Iterations:  -1,
		Chisq:       math.NaN(),
		ProbeFreq:   math.NaN(),
		Temperature: math.NaN(),
		Log:         log,
	}

	lines := strings.Split(head, "\n")
	found := false
	for i, line := range lines {
		if strings.TrimSpace(line) == keyParameterList {
			r.Params, r.Uncertainties = parseParams(lines[i+1:])
			found = true
			break
		}

		key, value, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		r.set(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	if !found {
		return Result{}, fmt.Errorf("%w: no %s block", ErrMalformed, keyParameterList)
	}
	return r, nil
}

// splitLog separates the header from the log text at the first marker line.
// The header keeps its line endings; the log is returned verbatim.
func splitLog(text string) (head, log string) {
	for start := 0; start < len(text); {
		end := strings.IndexByte(text[start:], '\n')
		next := len(text)
		if end >= 0 {
			end += start
			next = end + 1
		} else {
			end = len(text)
		}
		if strings.TrimSuffix(text[start:end], "\r") == logMarker {
			return text[:start], text[next:]
		}
		start = next
	}
	return text, ""
}

func (r *Result) set(key, value string) {
	switch key {
	case "FitType":
		if t, err := ParseFitType(value); err == nil {
			r.Type = t
		}
	case "Category":
		if c, err := ParseCategory(value); err == nil {
			r.Category = c
		}
	case "Lineshape":
		if s, err := lineshape.ParseShape(value); err == nil {
			r.Shape = s
		}
	case "Status":
		if s, err := lm.ParseStatus(value); err == nil {
			r.Status = s
		}
	case "Iterations":
		if n, err := strconv.Atoi(value); err == nil {
			r.Iterations = n
		}
	case "Chisq":
		r.Chisq = parseFloat(value, r.Chisq)
	case "ProbeFreq":
		r.ProbeFreq = parseFloat(value, r.ProbeFreq)
	case "Delay":
		r.Processing.DelayUs = parseFloat(value, 0)
	case "HighPass":
		r.Processing.HighPassKHz = parseFloat(value, 0)
	case "Exp":
		r.Processing.ExpDecayUs = parseFloat(value, 0)
	case "RemoveDC":
		r.Processing.RemoveDC, _ = strconv.ParseBool(value)
	case "ZeroPad":
		r.Processing.ZeroPad, _ = strconv.ParseBool(value)
	case "UseWindow":
		r.Processing.ApplyWindow, _ = strconv.ParseBool(value)
	case "SinglePeaks":
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			r.NumSingles = n
		}
	case "BufferGas":
		r.BufferGas = value
	case "Temperature":
		r.Temperature = parseFloat(value, r.Temperature)
	}
}

// parseParams reads value/uncertainty lines until the first line that is
// not a number pair.
func parseParams(lines []string) (params, unc []float64) {
	for _, line := range lines {
		v, u, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok {
			break
		}
		pv, err1 := strconv.ParseFloat(strings.TrimSpace(v), 64)
		pu, err2 := strconv.ParseFloat(strings.TrimSpace(u), 64)
		if err1 != nil || err2 != nil {
			break
		}
		params = append(params, pv)
		unc = append(unc, pu)
	}
	return params, unc
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}
