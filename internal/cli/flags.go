package cli

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// optionalFloat remembers whether the flag was given at all.
type optionalFloat struct {
	value *float64
}

func (f *optionalFloat) String() string {
	if f == nil || f.value == nil {
		return ""
	}
	return strconv.FormatFloat(*f.value, 'g', -1, 64)
}

func (f *optionalFloat) Set(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	f.value = &v
	return nil
}

// stringFlag registers a long name and a one-letter alias for the same value.
func stringFlag(fs *flag.FlagSet, p *string, long, short, value, usage string) {
	fs.StringVar(p, long, value, usage)
	if short != "" {
		fs.StringVar(p, short, value, "shorthand for --"+long)
	}
}

func boolFlag(fs *flag.FlagSet, p *bool, long, short string, value bool, usage string) {
	fs.BoolVar(p, long, value, usage)
	if short != "" {
		fs.BoolVar(p, short, value, "shorthand for --"+long)
	}
}

func floatFlag(fs *flag.FlagSet, p *optionalFloat, long, short, usage string) {
	fs.Var(p, long, usage)
	if short != "" {
		fs.Var(p, short, "shorthand for --"+long)
	}
}

// workDirFlags are shared by every command that addresses a work directory.
type workDirFlags struct {
	workDir     string
	condorRoot  string
	dataset     string
	localConfig string
}

func (w *workDirFlags) register(fs *flag.FlagSet) {
	stringFlag(fs, &w.workDir, "work-dir", "w", "", "condor work directory name")
	stringFlag(fs, &w.condorRoot, "condor-root", "", "condor", "directory holding the work directories")
	stringFlag(fs, &w.dataset, "dataset", "d", "", "dataset name (when no local config is given)")
	stringFlag(fs, &w.localConfig, "local-config", "l", "", "local config YAML listing datasets and composites")
}

func (w workDirFlags) trimmed() workDirFlags {
	return workDirFlags{
		workDir:     strings.TrimSpace(w.workDir),
		condorRoot:  strings.TrimSpace(w.condorRoot),
		dataset:     strings.TrimSpace(w.dataset),
		localConfig: strings.TrimSpace(w.localConfig),
	}
}
