package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mergeout/internal/config"
	"mergeout/internal/rootfile/rootfiletest"
	"mergeout/internal/runstore"
)

func setupWorkDir(t *testing.T) (string, string) {
	t.Helper()
	tmp := t.TempDir()
	fakeBin := filepath.Join(tmp, "bin")
	require.NoError(t, os.MkdirAll(fakeBin, 0o755))
	tool := `#!/usr/bin/env bash
set -euo pipefail
echo "$*" >> "$MERGE_CALLS"
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
: > "${out}"
`
	require.NoError(t, os.WriteFile(filepath.Join(fakeBin, "fake-merge"), []byte(tool), 0o755))
	t.Setenv("PATH", fakeBin+":"+os.Getenv("PATH"))
	t.Setenv(config.EnvMergeTool, "fake-merge")
	calls := filepath.Join(tmp, "calls.txt")
	t.Setenv("MERGE_CALLS", calls)

	analysis := filepath.Join(tmp, "analysis")
	dir := filepath.Join(analysis, "condor", "run1", "TTbar")
	require.NoError(t, runstore.Mkdir(filepath.Join(dir, "El")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DatasetInfoYAMLName("TTbar")), []byte("cross_section: 5\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "condor.sub"), []byte("Arguments = $(Process)\nQueue 2\n"), 0o644))
	for i, code := range []int{0, 7} {
		log := fmt.Sprintf("005 (1.000.000) Job terminated.\n\t(1) Normal termination (return value %d)\n", code)
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("condor_%d.log", i)), []byte(log), 0o644))
		rootfiletest.Write(t, filepath.Join(dir, fmt.Sprintf("hist_%d.root", i)),
			rootfiletest.HistogramFile(50, map[string]float64{"El": 10}, "El"))
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(analysis))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return analysis, calls
}

func TestHarnessMergeSingleDataset(t *testing.T) {
	analysis, calls := setupWorkDir(t)

	require.NoError(t, Run([]string{"merge", "-w", "run1", "-d", "TTbar", "-L", "10"}))

	data, err := os.ReadFile(calls)
	require.NoError(t, err)
	want := "-i hist_0.root -o " + filepath.Join(analysis, "condor", "run1", "TTbar.root") + " -w 1\n"
	require.Equal(t, want, string(data))
	require.FileExists(t, filepath.Join(analysis, "condor", "run1", "TTbar", "condor_resubmit.sub"))
	original, err := runstore.ReadCount(filepath.Join(analysis, "condor", "run1", "TTbar", "El", "OriginalNumberOfEvents.txt"))
	require.NoError(t, err)
	require.InDelta(t, 50, original, 1e-9)
	skimmed, err := runstore.ReadCount(filepath.Join(analysis, "condor", "run1", "TTbar", "El", "SkimNumberOfEvents.txt"))
	require.NoError(t, err)
	require.InDelta(t, 10, skimmed, 1e-9)
}

func TestHarnessMergeRequiresTarget(t *testing.T) {
	setupWorkDir(t)

	err := Run([]string{"merge", "-d", "TTbar", "-L", "10"})
	require.ErrorContains(t, err, "--work-dir")

	err = Run([]string{"merge", "-w", "run1"})
	require.ErrorContains(t, err, "--local-config")

	err = Run([]string{"merge", "--work-dir", "run1", "--dataset", "TTbar"})
	require.ErrorContains(t, err, "luminosity")
}

func TestHarnessCondorWithoutSubmit(t *testing.T) {
	analysis, calls := setupWorkDir(t)
	cfg := filepath.Join(analysis, "localConfig.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("datasets: [TTbar]\nint_lumi: 20\n"), 0o644))

	require.NoError(t, Run([]string{"merge", "-w", "run1", "-l", cfg, "-c", "--no-submit", "--json"}))

	_, err := os.Stat(calls)
	require.True(t, os.IsNotExist(err), "merge tool must not run in condor mode")
	workDir := filepath.Join(analysis, "condor", "run1")
	sub, err := os.ReadFile(filepath.Join(workDir, "condorMerging.sub"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(sub), "Queue 1\n"))
	require.FileExists(t, filepath.Join(workDir, "merge.sh"))
	require.FileExists(t, filepath.Join(workDir, "TTbar", "outputInfo_TTbar.json"))
}

func TestHarnessResubmitAndStatus(t *testing.T) {
	analysis, _ := setupWorkDir(t)
	dir := filepath.Join(analysis, "condor", "run1", "TTbar")

	require.NoError(t, Run([]string{"resubmit", "--dir", dir}))
	data, err := os.ReadFile(filepath.Join(dir, "condor_resubmit.sub"))
	require.NoError(t, err)
	require.Equal(t, "Arguments = 1\nQueue 1\n\n", string(data))

	require.NoError(t, Run([]string{"status", "-w", "run1", "--json"}))
	require.ErrorContains(t, Run([]string{"status"}), "working directory")
}

func TestRunUnknownCommand(t *testing.T) {
	require.ErrorContains(t, Run([]string{"explode"}), "unknown command")
	require.NoError(t, Run([]string{"help"}))
}

func TestRunWeight(t *testing.T) {
	require.NoError(t, Run([]string{"weight", "-L", "100", "--xsec", "2", "--events", "50"}))
	require.ErrorContains(t, Run([]string{"weight", "--xsec", "2"}), "required")
	require.ErrorContains(t, Run([]string{"weight", "-L", "1", "--xsec", "2", "--events", "5", "--original", "9"}), "together")
}
