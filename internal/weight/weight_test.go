package weight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mergeout/internal/model"
)

func TestCompute_WithoutSkim(t *testing.T) {
	got := Compute(Inputs{Lumi: 10, CrossSection: 2, Total: 1000})
	require.InDelta(t, 0.02, got, 1e-12)
}

func TestCompute_WithSkim(t *testing.T) {
	got := Compute(Inputs{
		Lumi:         10,
		CrossSection: 2,
		Total:        1000,
		Skim:         &model.SkimCounts{Original: 1000, Skimmed: 500},
	})
	require.InDelta(t, 0.01, got, 1e-12)
}

func TestCompute_DataAlwaysOne(t *testing.T) {
	cases := []Inputs{
		{Lumi: 10, CrossSection: 0, Total: 1000},
		{Lumi: 10, CrossSection: -1, Total: 5},
		{Lumi: 0, CrossSection: -1, Total: 0, Skim: &model.SkimCounts{Original: 10, Skimmed: 1}},
	}
	for _, in := range cases {
		require.Equal(t, 1.0, Compute(in))
	}
}

func TestEffectiveLumi(t *testing.T) {
	require.InDelta(t, 500, EffectiveLumi(1000, 2), 1e-12)
	require.Zero(t, EffectiveLumi(1000, -1))
}

func TestString_OneEntryPerFile(t *testing.T) {
	s := String(0.02, 3)
	require.Equal(t, "0.02,0.02,0.02", s)
	require.Len(t, strings.Split(s, ","), 3)
	require.Equal(t, "", String(1, 0))
	require.Equal(t, "1", String(1, 1))
}
