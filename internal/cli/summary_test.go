package cli

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"mergeout/internal/merge"
)

func TestWriteMergeSummary_Plain(t *testing.T) {
	res := merge.Result{
		SessionID: "s1",
		Mode:      merge.ModeLocal,
		WorkDir:   "/w",
		IntLumi:   19700,
		Datasets: []merge.DatasetResult{
			{
				Name:        "TTbar",
				LogCount:    4,
				Good:        []int{0, 1, 3},
				Bad:         []int{2},
				Files:       []string{"a", "b", "c"},
				TotalEvents: 1234567,
				Weight:      0.5,
				Output:      "/w/TTbar.root",
			},
			{Name: "WJets", Skipped: true, SkipReason: merge.SkipMissingDirectory},
		},
		Composites: []merge.CompositeResult{
			{Name: "Background", Members: []string{"TTbar.root"}, Missing: []string{"WJets"}, Output: "/w/Background.root"},
		},
	}

	var buf bytes.Buffer
	writeMergeSummary(&buf, res, false)
	out := buf.String()
	require.Contains(t, out, "int_lumi: 19700\n")
	require.Contains(t, out, "TTbar [merged]\n")
	require.Contains(t, out, "  jobs: 4 (good 3, bad 1, ignored 0)\n")
	require.Contains(t, out, "  events: 1,234,567\n")
	require.Contains(t, out, "  weight: 0.5\n")
	require.Contains(t, out, "  output: /w/TTbar.root (0 B)\n")
	require.Contains(t, out, "WJets [skipped: missing_directory]\n")
	require.Contains(t, out, "Background [incomplete]\n")
	require.Contains(t, out, "  missing: WJets\n")
	require.NotContains(t, out, "\x1b[")
}

func TestWriteMergeSummary_CondorNotSubmitted(t *testing.T) {
	res := merge.Result{
		Mode:            merge.ModeCondor,
		Datasets:        []merge.DatasetResult{{Name: "TTbar", OutputInfo: "/w/TTbar/outputInfo_TTbar.json", Files: []string{"a"}}},
		SubmitFile:      "/w/condorMerging.sub",
		CompanionScript: "/w/merge.sh",
	}
	var buf bytes.Buffer
	writeMergeSummary(&buf, res, false)
	require.Contains(t, buf.String(), "TTbar [prepared]\n")
	require.Contains(t, buf.String(), "submitted: no (run condor_submit /w/condorMerging.sub)\n")
}

func TestInspectModel_LoadAndQuit(t *testing.T) {
	m := newInspectModel(workDirFlags{workDir: "run1"})
	report := merge.StatusReport{
		WorkDir: "/w",
		Datasets: []merge.DatasetStatus{
			{Name: "TTbar", State: merge.StateFailed, DirExists: true, Logs: 2, Good: 1, Bad: 1, BadJobs: []int{1}},
			{Name: "WJets", State: merge.StateMerged, DirExists: true, Merged: true, MergedPath: "/w/WJets.root", MergedSize: 2048},
		},
		Totals: merge.StatusTotals{Datasets: 2, Merged: 1, Attention: 1},
	}

	next, _ := m.Update(inspectLoadedMsg{report: report})
	m = next.(inspectModel)
	require.Len(t, m.table.Rows(), 2)
	require.Equal(t, "2.0 KiB", m.table.Rows()[1][7])
	require.Equal(t, "2 datasets, 1 merged, 1 need attention", m.status)

	sel, ok := m.selected()
	require.True(t, ok)
	require.Equal(t, "TTbar", sel.Name)
	require.Contains(t, m.View(), "bad jobs: 1")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	require.True(t, isQuit)
}

func TestOptionalFloat(t *testing.T) {
	var f optionalFloat
	require.Equal(t, "", f.String())
	require.Error(t, f.Set("abc"))
	require.NoError(t, f.Set(" 19.7 "))
	require.NotNil(t, f.value)
	require.Equal(t, "19.7", f.String())
}
