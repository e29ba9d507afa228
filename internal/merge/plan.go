package merge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mergeout/internal/condor"
	"mergeout/internal/config"
)

var ErrWorkDirRequired = errors.New("no working directory is given")

type plan struct {
	datasets   []string
	composites []config.Composite
	lumi       float64
	condorArgs []condor.Option
}

// ResolveWorkDir returns <base>/<condorRoot>/<workDir>; base defaults to the
// current directory.
func ResolveWorkDir(base, condorRoot, workDir string) (string, error) {
	wd := strings.TrimSpace(workDir)
	if wd == "" {
		return "", ErrWorkDirRequired
	}
	if filepath.IsAbs(wd) {
		return filepath.Clean(wd), nil
	}
	b := strings.TrimSpace(base)
	if b == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve current directory: %w", err)
		}
		b = cwd
	}
	root := strings.TrimSpace(condorRoot)
	if root == "" {
		root = config.DefaultCondorRoot
	}
	return filepath.Join(b, root, wd), nil
}

func resolvePlan(localConfigPath, dataset string, lumi *float64, useCondor bool) (plan, error) {
	if strings.TrimSpace(localConfigPath) != "" {
		cfg, err := config.LoadLocal(localConfigPath)
		if err != nil {
			return plan{}, err
		}
		p := plan{
			datasets:   cfg.SplitDatasets(),
			composites: cfg.CompositeDatasets(),
			lumi:       cfg.IntLumi,
		}
		if lumi != nil {
			p.lumi = *lumi
		}
		for _, kv := range cfg.CondorArguments {
			p.condorArgs = append(p.condorArgs, condor.Option{Key: kv.Key, Value: kv.Value})
		}
		return p, nil
	}

	if useCondor {
		return plan{}, fmt.Errorf("%w: condor merging needs the dataset list", config.ErrMissingLocalConfig)
	}
	ds := strings.TrimSpace(dataset)
	if ds == "" {
		return plan{}, config.ErrNoDatasets
	}
	if lumi == nil {
		return plan{}, errors.New("target luminosity is required without a local config")
	}
	if *lumi < 0 {
		return plan{}, errors.New("target luminosity must be >= 0")
	}
	return plan{datasets: []string{ds}, lumi: *lumi}, nil
}
