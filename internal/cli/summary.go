package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mergeout/internal/merge"
	"mergeout/internal/weight"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	summaryMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	summaryErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	summaryWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	summaryOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

type painter struct {
	color bool
}

func (p painter) paint(style lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return style.Render(text)
}

func datasetLabel(d merge.DatasetResult) (string, lipgloss.Style) {
	switch {
	case d.Skipped:
		return "skipped: " + d.SkipReason, summaryWarnStyle
	case d.MergeError != "" || d.Error != "":
		return "failed", summaryErrorStyle
	case d.OutputInfo != "":
		return "prepared", summaryOKStyle
	default:
		return "merged", summaryOKStyle
	}
}

func writeMergeSummary(w io.Writer, res merge.Result, color bool) {
	p := painter{color: color}
	fmt.Fprintf(w, "%s\n", p.paint(summaryTitleStyle, "mergeout "+res.Mode+" merge"))
	fmt.Fprintf(w, "session_id: %s\n", res.SessionID)
	fmt.Fprintf(w, "work_dir: %s\n", res.WorkDir)
	fmt.Fprintf(w, "int_lumi: %s\n", weight.Format(res.IntLumi))

	for _, d := range res.Datasets {
		label, style := datasetLabel(d)
		fmt.Fprintf(w, "%s [%s]\n", d.Name, p.paint(style, label))
		if d.LogCount > 0 {
			fmt.Fprintf(w, "  jobs: %d (good %d, bad %d, ignored %d)\n", d.LogCount, len(d.Good), len(d.Bad), len(d.Ignored))
		}
		if d.ResubmitFile != "" {
			fmt.Fprintf(w, "  resubmit: %s\n", d.ResubmitFile)
		}
		if d.Skipped {
			if d.Error != "" {
				fmt.Fprintf(w, "  error: %s\n", p.paint(summaryMutedStyle, d.Error))
			}
			continue
		}
		fmt.Fprintf(w, "  files: %d\n", len(d.Files))
		fmt.Fprintf(w, "  events: %s\n", formatEvents(d.TotalEvents))
		if d.RanOverSkim {
			fmt.Fprintln(w, "  ran_over_skim: true")
		}
		fmt.Fprintf(w, "  weight: %s\n", weight.Format(d.Weight))
		if d.EffectiveLumi > 0 {
			fmt.Fprintf(w, "  effective_lumi: %s\n", weight.Format(d.EffectiveLumi))
		}
		if d.Output != "" {
			fmt.Fprintf(w, "  output: %s (%s)\n", d.Output, formatBytesIEC(fileSize(d.Output)))
		}
		if d.OutputInfo != "" {
			fmt.Fprintf(w, "  output_info: %s\n", d.OutputInfo)
		}
		if msg := firstLine(d.MergeError); msg != "" {
			fmt.Fprintf(w, "  merge_error: %s\n", p.paint(summaryErrorStyle, msg))
		}
		if d.Error != "" {
			fmt.Fprintf(w, "  error: %s\n", p.paint(summaryErrorStyle, d.Error))
		}
	}

	for _, c := range res.Composites {
		label, style := "merged", summaryOKStyle
		switch {
		case c.Skipped:
			label, style = "skipped: no members", summaryWarnStyle
		case c.MergeError != "":
			label, style = "failed", summaryErrorStyle
		case len(c.Missing) > 0:
			label, style = "incomplete", summaryWarnStyle
		}
		fmt.Fprintf(w, "%s [%s]\n", c.Name, p.paint(style, label))
		if len(c.Members) > 0 {
			fmt.Fprintf(w, "  members: %s\n", strings.Join(c.Members, ", "))
		}
		if len(c.Missing) > 0 {
			fmt.Fprintf(w, "  missing: %s\n", strings.Join(c.Missing, ", "))
		}
		if c.Output != "" {
			fmt.Fprintf(w, "  output: %s (%s)\n", c.Output, formatBytesIEC(fileSize(c.Output)))
		}
	}

	if res.Mode == merge.ModeCondor {
		if res.SubmitFile != "" {
			fmt.Fprintf(w, "submit_file: %s\n", res.SubmitFile)
			fmt.Fprintf(w, "companion_script: %s\n", res.CompanionScript)
		}
		if res.Submitted {
			fmt.Fprintf(w, "submitted: cluster %s\n", res.ClusterID)
		} else if res.SubmitFile != "" {
			fmt.Fprintln(w, "submitted: no (run condor_submit "+res.SubmitFile+")")
		}
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
