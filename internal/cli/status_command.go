package cli

import (
	"flag"
	"fmt"
	"strings"

	"mergeout/internal/merge"
)

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	var target workDirFlags
	target.register(fs)
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	report, err := loadStatus(target)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(report)
	}
	if report.LockedBy != nil {
		fmt.Printf("merge in progress: %s\n", report.LockedBy)
	}
	if len(report.Datasets) == 0 {
		fmt.Printf("no datasets found in %s\n", report.WorkDir)
		return nil
	}

	for _, row := range report.Datasets {
		fmt.Printf("%s [%s]\n", row.Name, row.State)
		if !row.DirExists {
			continue
		}
		fmt.Printf("  jobs good/bad/ignored: %d/%d/%d\n", row.Good, row.Bad, row.Ignored)
		if len(row.BadJobs) > 0 {
			fmt.Printf("  bad_jobs: %s\n", joinInts(row.BadJobs))
		}
		fmt.Printf("  output_files: %d\n", row.OutputFiles)
		if row.Merged {
			fmt.Printf("  merged: %s (%s)\n", row.MergedPath, formatBytesIEC(row.MergedSize))
		}
		if row.Error != "" {
			fmt.Printf("  error: %s\n", row.Error)
		}
	}
	fmt.Println("totals")
	fmt.Printf("  datasets: %d\n", report.Totals.Datasets)
	fmt.Printf("  merged: %d\n", report.Totals.Merged)
	fmt.Printf("  attention: %d\n", report.Totals.Attention)
	fmt.Printf("  jobs good/bad/ignored: %d/%d/%d\n", report.Totals.Good, report.Totals.Bad, report.Totals.Ignored)
	return nil
}

func loadStatus(target workDirFlags) (merge.StatusReport, error) {
	t := target.trimmed()
	if t.workDir == "" {
		return merge.StatusReport{}, merge.ErrWorkDirRequired
	}
	return merge.Status(merge.StatusOptions{
		CondorRoot:      t.condorRoot,
		WorkDir:         t.workDir,
		Dataset:         t.dataset,
		LocalConfigPath: t.localConfig,
	})
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
