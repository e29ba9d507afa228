package condor

import (
	"fmt"
	"strings"
)

type CompanionScript struct {
	// Binary is the mergeout executable the job re-invokes.
	Binary string
	// WorkDir, when set, is entered before the dataset directory.
	WorkDir  string
	Datasets []string
}

// RenderCompanionScript renders the per-job script: given the job index it
// picks the dataset, enters its directory and replays the merge from the
// output info written there.
func RenderCompanionScript(c CompanionScript) string {
	var b strings.Builder
	b.WriteString("#!/usr/bin/env bash\n")
	b.WriteString("set -euo pipefail\n\n")
	b.WriteString("datasets=(\n")
	for _, ds := range c.Datasets {
		fmt.Fprintf(&b, "  %s\n", shellQuote(ds))
	}
	b.WriteString(")\n\n")
	b.WriteString("index=\"${1:?job index required}\"\n")
	b.WriteString("dataset=\"${datasets[$index]}\"\n\n")
	if c.WorkDir != "" {
		fmt.Fprintf(&b, "cd %s\n", shellQuote(c.WorkDir))
	}
	b.WriteString("cd \"${dataset}\"\n")
	fmt.Fprintf(&b, "%s replay --info \"outputInfo_${dataset}.json\" --output \"../${dataset}.root\"\n", shellQuote(c.Binary))
	b.WriteString("echo \"Finish merging dataset ${dataset}\"\n")
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
