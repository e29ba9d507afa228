// Package weight computes the per-dataset normalization applied to every
// histogram file before merging.
package weight

import (
	"strconv"
	"strings"

	"mergeout/internal/model"
)

// DataWeight is applied to datasets without a cross section.
const DataWeight = 1.0

type Inputs struct {
	// Lumi is the target integrated luminosity in inverse pb.
	Lumi float64
	// CrossSection in pb; zero or negative marks real data.
	CrossSection float64
	// Total is the number of events the surviving jobs ran over.
	Total float64
	// Skim is set when the jobs ran over a prior skim.
	Skim *model.SkimCounts
}

// Compute returns L*xsec/N, scaled by the skim efficiency when the dataset
// was skimmed first.
func Compute(in Inputs) float64 {
	if in.CrossSection <= 0 || in.Total <= 0 {
		return DataWeight
	}
	if in.Skim != nil {
		if in.Skim.Original <= 0 {
			return DataWeight
		}
		return in.Lumi * in.CrossSection * in.Skim.Skimmed / (in.Skim.Original * in.Total)
	}
	return in.Lumi * in.CrossSection / in.Total
}

// EffectiveLumi is the luminosity the processed events correspond to.
func EffectiveLumi(total, crossSection float64) float64 {
	if crossSection <= 0 {
		return 0
	}
	return total / crossSection
}

func Format(w float64) string {
	return strconv.FormatFloat(w, 'g', -1, 64)
}

// String repeats w once per input file, comma separated.
func String(w float64, n int) string {
	if n <= 0 {
		return ""
	}
	parts := make([]string, n)
	s := Format(w)
	for i := range parts {
		parts[i] = s
	}
	return strings.Join(parts, ",")
}
