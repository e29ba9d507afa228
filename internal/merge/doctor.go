package merge

import (
	"os"
	"strings"

	"mergeout/internal/config"
	"mergeout/internal/mergetool"
)

type DoctorOptions struct {
	BaseDir    string
	CondorRoot string
	WorkDir    string
	Settings   config.Settings
}

type DoctorResult struct {
	OK     bool          `json:"ok"`
	Checks []DoctorCheck `json:"checks"`
}

type DoctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func Doctor(opts DoctorOptions) (DoctorResult, error) {
	checks := make([]DoctorCheck, 0, 3)
	dep := mergetool.DependencyStatus(opts.Settings.MergeTool, opts.Settings.CondorSubmit)
	checks = append(checks, DoctorCheck{
		Name:    "dependency:merge-tool",
		OK:      dep.MergeToolFound,
		Message: dependencyMessage(dep.MergeToolFound, dep.MergeToolPath, nonEmpty(opts.Settings.MergeTool, mergetool.DefaultBinary)),
	})
	checks = append(checks, DoctorCheck{
		Name:    "dependency:condor_submit",
		OK:      dep.CondorSubmitFound,
		Message: dependencyMessage(dep.CondorSubmitFound, dep.CondorSubmitPath, nonEmpty(opts.Settings.CondorSubmit, config.DefaultCondorSubmit)),
	})

	if strings.TrimSpace(opts.WorkDir) != "" {
		workDir, err := ResolveWorkDir(opts.BaseDir, opts.CondorRoot, opts.WorkDir)
		if err != nil {
			return DoctorResult{}, err
		}
		ok, msg := writableDir(workDir)
		checks = append(checks, DoctorCheck{Name: "directory:work", OK: ok, Message: msg})
	}

	ok := true
	for _, c := range checks {
		if !c.OK {
			ok = false
			break
		}
	}
	return DoctorResult{OK: ok, Checks: checks}, nil
}

func dependencyMessage(ok bool, path, name string) string {
	if ok {
		return name + " found at " + path
	}
	return name + " not found on PATH"
}

// writableDir probes an existing directory; unlike merging it never creates
// the work directory.
func writableDir(path string) (bool, string) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err.Error()
	}
	if !info.IsDir() {
		return false, path + " is not a directory"
	}
	f, err := os.CreateTemp(path, "mergeout-check-*.tmp")
	if err != nil {
		return false, err.Error()
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	return true, "writable"
}

func nonEmpty(v, fallback string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return fallback
}
