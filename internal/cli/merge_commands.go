package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mergeout/internal/condor"
	"mergeout/internal/config"
	"mergeout/internal/joblog"
	"mergeout/internal/merge"
	"mergeout/internal/model"
	"mergeout/internal/weight"
)

func runMerge(args []string) error {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	var target workDirFlags
	target.register(fs)
	var lumi optionalFloat
	floatFlag(fs, &lumi, "lumi", "L", "target integrated luminosity (overrides int_lumi of the local config)")
	var useCondor bool
	boolFlag(fs, &useCondor, "condor", "c", false, "merge with condor jobs instead of locally")
	noSubmit := fs.Bool("no-submit", false, "write the condor merge files without submitting them")
	jsonOut := fs.Bool("json", false, "print JSON output")
	verbose := fs.Bool("verbose", false, "debug logging")
	echo := fs.Bool("echo", false, "echo merge tool output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	t := target.trimmed()
	if t.workDir == "" {
		fs.Usage()
		return errors.New("--work-dir is required")
	}
	if t.localConfig == "" && t.dataset == "" {
		fs.Usage()
		return errors.New("set --local-config, or --dataset with --lumi")
	}

	log, err := newLogger(*verbose)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, cancel := interruptContext()
	defer cancel()

	res, err := merge.Run(ctx, merge.Options{
		CondorRoot:      t.condorRoot,
		WorkDir:         t.workDir,
		Dataset:         t.dataset,
		LocalConfigPath: t.localConfig,
		IntLumi:         lumi.value,
		UseCondor:       useCondor,
		NoSubmit:        *noSubmit,
		Settings:        config.LoadSettings(),
		Logger:          log,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		EchoOutput:      *echo,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}
	writeMergeSummary(os.Stdout, res, stdoutIsTTY())
	return nil
}

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	info := fs.String("info", "", "outputInfo_<dataset>.json written by merge --condor")
	output := fs.String("output", "", "merged output path (default ../<dataset>.root)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	verbose := fs.Bool("verbose", false, "debug logging")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*info) == "" {
		fs.Usage()
		return errors.New("--info is required")
	}

	log, err := newLogger(*verbose)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, cancel := interruptContext()
	defer cancel()

	res, err := merge.Replay(ctx, merge.ReplayOptions{
		InfoPath:   strings.TrimSpace(*info),
		Output:     strings.TrimSpace(*output),
		Settings:   config.LoadSettings(),
		Logger:     log,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		EchoOutput: true,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}
	fmt.Printf("dataset: %s\n", res.Dataset)
	fmt.Printf("output: %s\n", res.Output)
	fmt.Printf("command: %s\n", strings.Join(res.Command, " "))
	return nil
}

type resubmitResult struct {
	Dir          string `json:"dir"`
	Logs         int    `json:"log_count"`
	Bad          []int  `json:"bad"`
	ResubmitFile string `json:"resubmit_file,omitempty"`
}

func runResubmit(args []string) error {
	fs := flag.NewFlagSet("resubmit", flag.ContinueOnError)
	var target workDirFlags
	target.register(fs)
	dir := fs.String("dir", "", "dataset directory (instead of --work-dir/--dataset)")
	submitFile := fs.String("submit-file", condor.OriginalSubmitFile, "original submit description in the dataset directory")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	datasetDir := strings.TrimSpace(*dir)
	if datasetDir == "" {
		t := target.trimmed()
		if t.dataset == "" {
			fs.Usage()
			return errors.New("set --dir, or --work-dir with --dataset")
		}
		workDir, err := merge.ResolveWorkDir("", t.condorRoot, t.workDir)
		if err != nil {
			return err
		}
		datasetDir = filepath.Join(workDir, t.dataset)
	}

	scan, err := joblog.Scan(datasetDir)
	if err != nil {
		return err
	}
	res := resubmitResult{Dir: datasetDir, Logs: scan.LogCount(), Bad: scan.Bad}
	if len(scan.Bad) > 0 {
		path, err := condor.WriteResubmission(datasetDir, strings.TrimSpace(*submitFile), scan.Bad)
		if err != nil {
			return err
		}
		res.ResubmitFile = path
	}

	if *jsonOut {
		return printJSON(res)
	}
	for _, job := range scan.Jobs {
		if job.Status == model.JobBad {
			fmt.Println(job.String())
		}
	}
	fmt.Printf("log_count: %d\n", res.Logs)
	fmt.Printf("bad_jobs: %d\n", len(res.Bad))
	if res.ResubmitFile == "" {
		fmt.Println("no failed jobs, nothing to resubmit")
		return nil
	}
	fmt.Printf("resubmit_file: %s\n", res.ResubmitFile)
	return nil
}

type weightResult struct {
	Weight        float64 `json:"weight"`
	EffectiveLumi float64 `json:"effective_lumi"`
	IsData        bool    `json:"is_data"`
}

func runWeight(args []string) error {
	fs := flag.NewFlagSet("weight", flag.ContinueOnError)
	var lumi, xsec, events, original, skimmed optionalFloat
	floatFlag(fs, &lumi, "lumi", "L", "target integrated luminosity")
	fs.Var(&xsec, "xsec", "cross section (<= 0 means data)")
	fs.Var(&events, "events", "events processed by the jobs")
	fs.Var(&original, "original", "events before the skim")
	fs.Var(&skimmed, "skimmed", "events in the skim")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if lumi.value == nil || xsec.value == nil || events.value == nil {
		fs.Usage()
		return errors.New("--lumi, --xsec and --events are required")
	}
	if (original.value == nil) != (skimmed.value == nil) {
		return errors.New("--original and --skimmed go together")
	}

	ds := model.Dataset{CrossSection: *xsec.value}
	if original.value != nil {
		ds.Skim = &model.SkimCounts{Original: *original.value, Skimmed: *skimmed.value}
	}
	res := weightResult{
		Weight: weight.Compute(weight.Inputs{
			Lumi:         *lumi.value,
			CrossSection: ds.CrossSection,
			Total:        *events.value,
			Skim:         ds.Skim,
		}),
		EffectiveLumi: weight.EffectiveLumi(*events.value, ds.CrossSection),
		IsData:        ds.IsData(),
	}
	if *jsonOut {
		return printJSON(res)
	}
	fmt.Printf("weight: %s\n", weight.Format(res.Weight))
	if !res.IsData {
		fmt.Printf("effective_lumi: %s\n", weight.Format(res.EffectiveLumi))
	}
	return nil
}

func runDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	var target workDirFlags
	target.register(fs)
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	t := target.trimmed()
	res, err := merge.Doctor(merge.DoctorOptions{
		CondorRoot: t.condorRoot,
		WorkDir:    t.workDir,
		Settings:   config.LoadSettings(),
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	for _, c := range res.Checks {
		status := "ok"
		if !c.OK {
			status = "fail"
		}
		fmt.Printf("%s: %s (%s)\n", c.Name, status, c.Message)
	}
	if !res.OK {
		return errors.New("doctor checks failed")
	}
	fmt.Println("doctor: all checks passed")
	return nil
}
