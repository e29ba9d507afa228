package condor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubmit_ParsesClusterID(t *testing.T) {
	tmp := t.TempDir()
	bin := filepath.Join(tmp, "condor_submit")
	script := `#!/usr/bin/env bash
set -euo pipefail
test -f "$1"
echo "Submitting job(s).."
echo "2 job(s) submitted to cluster 4711."
`
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, MergeSubmitFile), []byte("Queue 2\n"), 0o644))

	id, err := Submit(context.Background(), bin, tmp, MergeSubmitFile)
	require.NoError(t, err)
	require.Equal(t, "4711", id)
}

func TestSubmit_Failure(t *testing.T) {
	tmp := t.TempDir()
	bin := filepath.Join(tmp, "condor_submit")
	require.NoError(t, os.WriteFile(bin, []byte("#!/usr/bin/env bash\necho 'no schedd' >&2\nexit 1\n"), 0o755))

	_, err := Submit(context.Background(), bin, tmp, MergeSubmitFile)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no schedd")
}
