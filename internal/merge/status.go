package merge

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"mergeout/internal/condor"
	"mergeout/internal/config"
	"mergeout/internal/joblog"
	"mergeout/internal/runstore"
)

type StatusOptions struct {
	BaseDir         string
	CondorRoot      string
	WorkDir         string
	Dataset         string
	LocalConfigPath string
}

type DatasetStatus struct {
	Name        string `json:"name"`
	DirExists   bool   `json:"dir_exists"`
	Logs        int    `json:"log_count"`
	Good        int    `json:"good_count"`
	Bad         int    `json:"bad_count"`
	Ignored     int    `json:"ignored_count"`
	BadJobs     []int  `json:"bad_jobs"`
	OutputFiles int    `json:"output_files"`
	Resubmit    bool   `json:"resubmit_file"`
	OutputInfo  bool   `json:"output_info"`
	Merged      bool   `json:"merged"`
	MergedPath  string `json:"merged_path,omitempty"`
	MergedSize  int64  `json:"merged_size"`
	State       string `json:"state"`
	Error       string `json:"error,omitempty"`
}

type StatusTotals struct {
	Datasets  int `json:"datasets"`
	Merged    int `json:"merged"`
	Attention int `json:"attention"`
	Logs      int `json:"log_count"`
	Good      int `json:"good_count"`
	Bad       int `json:"bad_count"`
	Ignored   int `json:"ignored_count"`
}

type StatusReport struct {
	WorkDir  string              `json:"work_dir"`
	LockedBy *runstore.LockOwner `json:"locked_by,omitempty"`
	Datasets []DatasetStatus     `json:"datasets"`
	Totals   StatusTotals        `json:"totals"`
}

// Dataset states reported by Status.
const (
	StateMissing = "missing"
	StateError   = "error"
	StateFailed  = "failed_jobs"
	StateMerged  = "merged"
	StateReady   = "ready"
	StateEmpty   = "no_outputs"
)

// Status reports the job and merge state of each dataset without changing
// anything on disk. Without a dataset or local config every subdirectory of
// the work directory is reported.
func Status(opts StatusOptions) (StatusReport, error) {
	workDir, err := ResolveWorkDir(opts.BaseDir, opts.CondorRoot, opts.WorkDir)
	if err != nil {
		return StatusReport{}, err
	}

	var datasets []string
	switch {
	case strings.TrimSpace(opts.LocalConfigPath) != "":
		cfg, err := config.LoadLocal(opts.LocalConfigPath)
		if err != nil {
			return StatusReport{}, err
		}
		datasets = cfg.SplitDatasets()
	case strings.TrimSpace(opts.Dataset) != "":
		datasets = []string{strings.TrimSpace(opts.Dataset)}
	default:
		dirs, err := runstore.ListSubdirs(workDir)
		if err != nil {
			return StatusReport{}, err
		}
		for _, d := range dirs {
			datasets = append(datasets, filepath.Base(d))
		}
	}

	report := StatusReport{WorkDir: workDir, Datasets: make([]DatasetStatus, 0, len(datasets))}
	if owner, ok := runstore.LockHolder(workDir); ok {
		report.LockedBy = &owner
	}
	for _, ds := range datasets {
		row := datasetStatus(workDir, ds)
		report.Datasets = append(report.Datasets, row)
		report.Totals.Datasets++
		report.Totals.Logs += row.Logs
		report.Totals.Good += row.Good
		report.Totals.Bad += row.Bad
		report.Totals.Ignored += row.Ignored
		switch row.State {
		case StateMerged:
			report.Totals.Merged++
		case StateMissing, StateError, StateFailed:
			report.Totals.Attention++
		}
	}
	return report, nil
}

func datasetStatus(workDir, name string) DatasetStatus {
	dir := filepath.Join(workDir, name)
	row := DatasetStatus{Name: name, BadJobs: []int{}}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		row.State = StateMissing
		return row
	}
	row.DirExists = true

	scan, err := joblog.Scan(dir)
	if err != nil {
		row.State = StateError
		row.Error = err.Error()
		return row
	}
	row.Logs = scan.LogCount()
	row.Good = len(scan.Good)
	row.Bad = len(scan.Bad)
	row.Ignored = len(scan.Ignored)
	row.BadJobs = scan.Bad
	row.OutputFiles = len(goodOutputs(dir, scan.Good, zap.NewNop()))
	row.Resubmit = runstore.Exists(filepath.Join(dir, condor.ResubmitFile))
	row.OutputInfo = runstore.Exists(runstore.OutputInfoPath(dir, name))

	merged := filepath.Join(workDir, name+".root")
	if info, err := os.Stat(merged); err == nil && !info.IsDir() {
		row.Merged = true
		row.MergedPath = merged
		row.MergedSize = info.Size()
	}

	switch {
	case row.Bad > 0:
		row.State = StateFailed
	case row.Merged:
		row.State = StateMerged
	case row.OutputFiles == 0:
		row.State = StateEmpty
	default:
		row.State = StateReady
	}
	return row
}
