package condor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const originalSubmit = `Executable = cmsRun
Universe = vanilla
Arguments = config_cfg.py $(Process)
Output = condor_$(Process).out
Log = condor_$(Process).log

Queue 4
`

func TestResubmission_OneQueuePerBadIndex(t *testing.T) {
	got, err := Resubmission(strings.NewReader(originalSubmit), []int{2, 0, 2})
	require.NoError(t, err)

	want := `Executable = cmsRun
Universe = vanilla
Arguments = config_cfg.py 2
Output = condor_2.out
Log = condor_2.log

Queue 1

Arguments = config_cfg.py 0
Output = condor_0.out
Log = condor_0.log
Queue 1

Arguments = config_cfg.py 2
Output = condor_2.out
Log = condor_2.log
Queue 1

`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected resubmission (-want +got):\n%s", diff)
	}

	n, err := CountQueued(strings.NewReader(got))
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestResubmission_EmptyBadList(t *testing.T) {
	_, err := Resubmission(strings.NewReader(originalSubmit), nil)
	require.Error(t, err)
}

func TestWriteResubmission(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, OriginalSubmitFile), []byte(originalSubmit), 0o644))

	path, err := WriteResubmission(dir, "", []int{1})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, ResubmitFile), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "Arguments = config_cfg.py 1\n")
	require.NotContains(t, string(data), "$(Process)")
}

func TestCountQueued(t *testing.T) {
	n, err := CountQueued(strings.NewReader("queue\nQueue 3\nfoo = bar\n"))
	require.NoError(t, err)
	require.Equal(t, 4, n)
}
