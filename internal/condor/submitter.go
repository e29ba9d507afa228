package condor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

const DefaultSubmitBinary = "condor_submit"

var reClusterID = regexp.MustCompile(`submitted to cluster (\d+)`)

// Submit runs condor_submit on file inside dir and returns the cluster id
// when the scheduler reports one.
func Submit(ctx context.Context, binary, dir, file string) (string, error) {
	bin := strings.TrimSpace(binary)
	if bin == "" {
		bin = DefaultSubmitBinary
	}
	cmd := exec.CommandContext(ctx, bin, file)
	cmd.Dir = dir
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", bin, err, strings.TrimSpace(stderr.String()))
	}
	if m := reClusterID.FindStringSubmatch(stdout.String()); len(m) > 1 {
		return m[1], nil
	}
	return "", nil
}
