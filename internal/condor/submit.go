package condor

import (
	"fmt"
	"strings"
)

const (
	MergeSubmitFile     = "condorMerging.sub"
	CompanionScriptFile = "merge.sh"
)

type MergeSubmission struct {
	Options    []Option
	Executable string
	// InputInfo holds the per-dataset output info files, relative to the
	// submit directory, in dataset order.
	InputInfo   []string
	ExtraInputs []string
	Datasets    []string
}

// RenderMergeSubmission fills the template placeholders and renders one job
// per dataset; the job index selects the dataset in the companion script.
func RenderMergeSubmission(s MergeSubmission) string {
	executable := strings.TrimSpace(s.Executable)
	if executable == "" {
		executable = CompanionScriptFile
	}

	var b strings.Builder
	for _, o := range s.Options {
		switch {
		case strings.EqualFold(o.Key, KeyExecutable) && o.Value == "":
			writeOption(&b, o.Key, executable)
		case strings.EqualFold(o.Key, KeyArguments) && o.Value == "":
			writeOption(&b, o.Key, processMacro)
		case strings.EqualFold(o.Key, KeyTransferInputFiles) && o.Value == "":
			inputs := append([]string{executable}, s.ExtraInputs...)
			inputs = append(inputs, s.InputInfo...)
			writeOption(&b, o.Key, strings.Join(inputs, ","))
		case strings.EqualFold(o.Key, KeyQueue):
			fmt.Fprintf(&b, "Queue %d\n", len(s.Datasets))
		default:
			writeOption(&b, o.Key, o.Value)
		}
		if o.BlankAfter {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeOption(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "%s = %s\n", key, value)
}
