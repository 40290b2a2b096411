package doppler

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-ftmw/measure/peaks"
)

// Config holds the pair-matching tolerances.
type Config struct {
	RelTolerance float64 `yaml:"rel_tolerance"` // |df-S|/S limit
	BinTolerance float64 `yaml:"bin_tolerance"` // |df-S| limit in FT bins
	AlphaMin     float64 `yaml:"alpha_min"`
	AlphaMax     float64 `yaml:"alpha_max"`
	EdgeFactor   float64 `yaml:"edge_factor"` // edge zone width in splittings
	EdgeSNR      float64 `yaml:"edge_snr"`    // SNR needed inside an edge zone
}

// DefaultConfig returns the standard matching tolerances.
func DefaultConfig() Config {
	return Config{
		RelTolerance: 0.35,
		BinTolerance: 2.5,
		AlphaMin:     0.10,
		AlphaMax:     0.90,
		EdgeFactor:   0.75,
		EdgeSNR:      5.0,
	}
}

// Pair is a Doppler doublet built from two candidates.
type Pair struct {
	Amplitude float64
	Alpha     float64 // fraction carried by the lower-frequency member
	Center    float64
	SNR       float64

	// Members are the indices of the lower and upper candidate in the
	// slice passed to Resolve.
	Members [2]int
}

// Axis is the frequency range a spectrum covers.
type Axis struct {
	Min, Max float64
}

// Resolver matches candidates into Doppler pairs.
type Resolver struct {
	cfg Config
}

// NewResolver returns a Resolver using cfg.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve returns the Doppler pairs found among cands for an expected
// splitting, sorted by descending amplitude. binSpacing is the FT bin width
// and axis the spectrum range used for the edge rule. A candidate belongs to
// at most one pair: the stronger pair wins, then the lower-frequency one.
func (r *Resolver) Resolve(cands []peaks.Candidate, splitting, binSpacing float64, axis Axis) []Pair {
	if !(splitting > 0) || len(cands) < 2 {
		return nil
	}

	order := make([]int, len(cands))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return cands[order[a]].X < cands[order[b]].X })

	var out []Pair
	for a := 0; a < len(order); a++ {
		for b := a + 1; b < len(order); b++ {
			lo, hi := order[a], order[b]
			if !r.matches(cands[lo], cands[hi], splitting, binSpacing) {
				continue
			}

			p := makePair(cands, lo, hi)
			if !r.alphaOK(p.Alpha) {
				continue
			}
			if r.hasBetterPartner(cands, order, a, b, p.Alpha, splitting, binSpacing) {
				continue
			}
			if !r.clearOfEdges(p, splitting, axis) {
				continue
			}

			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Amplitude > out[j].Amplitude })

	used := make(map[int]bool, 2*len(out))
	kept := out[:0]
	for _, p := range out {
		if used[p.Members[0]] || used[p.Members[1]] {
			continue
		}
		used[p.Members[0]], used[p.Members[1]] = true, true
		kept = append(kept, p)
	}

	return kept
}

func (r *Resolver) matches(a, b peaks.Candidate, splitting, binSpacing float64) bool {
	d := math.Abs(math.Abs(b.X-a.X) - splitting)
	return d/splitting < r.cfg.RelTolerance || d < r.cfg.BinTolerance*binSpacing
}

func (r *Resolver) alphaOK(alpha float64) bool {
	return alpha > r.cfg.AlphaMin && alpha < r.cfg.AlphaMax
}

// hasBetterPartner reports whether the candidate at sorted position a forms
// another acceptable pair whose alpha is closer to 0.5 than alpha.
func (r *Resolver) hasBetterPartner(cands []peaks.Candidate, order []int, a, b int, alpha, splitting, binSpacing float64) bool {
	for c := range order {
		if c == a || c == b {
			continue
		}

		lo, hi := order[a], order[c]
		if c < a {
			lo, hi = order[c], order[a]
		}
		if !r.matches(cands[lo], cands[hi], splitting, binSpacing) {
			continue
		}

		alt := makePair(cands, lo, hi)
		if r.alphaOK(alt.Alpha) && math.Abs(alt.Alpha-0.5) < math.Abs(alpha-0.5) {
			return true
		}
	}

	return false
}

func (r *Resolver) clearOfEdges(p Pair, splitting float64, axis Axis) bool {
	edge := r.cfg.EdgeFactor * splitting
	if p.Center > axis.Min+edge && p.Center < axis.Max-edge {
		return true
	}
	return p.SNR > r.cfg.EdgeSNR
}

func makePair(cands []peaks.Candidate, lo, hi int) Pair {
	a, b := cands[lo], cands[hi]
	amp := (a.Y + b.Y) / 2

	return Pair{
		Amplitude: amp,
		Alpha:     a.Y / 2 / amp,
		Center:    (a.X + b.X) / 2,
		SNR:       (a.SNR + b.SNR) / 2,
		Members:   [2]int{lo, hi},
	}
}

// Unpaired returns the candidates that are not a member of any pair.
func Unpaired(cands []peaks.Candidate, pairs []Pair) []peaks.Candidate {
	used := make(map[int]bool, 2*len(pairs))
	for _, p := range pairs {
		used[p.Members[0]] = true
		used[p.Members[1]] = true
	}

	var out []peaks.Candidate
	for i, c := range cands {
		if !used[i] {
			out = append(out, c)
		}
	}

	return out
}
