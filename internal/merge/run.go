package merge

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mergeout/internal/condor"
	"mergeout/internal/config"
	"mergeout/internal/joblog"
	"mergeout/internal/mergetool"
	"mergeout/internal/model"
	"mergeout/internal/rootfile"
	"mergeout/internal/runstore"
	"mergeout/internal/weight"
)

const (
	ModeLocal  = "local"
	ModeCondor = "condor"

	outputInfoSchemaVersion = 1
	mergeLogName            = "mergeout_merge.log"
)

// Skip reasons recorded on DatasetResult.
const (
	SkipMissingDirectory = "missing_directory"
	SkipLogScanFailed    = "log_scan_failed"
	SkipNoGoodFiles      = "no_good_files"
	SkipDatasetInfo      = "dataset_info_unavailable"
	SkipZeroEvents       = "zero_events"
)

type Options struct {
	BaseDir         string
	CondorRoot      string
	WorkDir         string
	Dataset         string
	LocalConfigPath string
	// IntLumi overrides the luminosity of the local config when set.
	IntLumi   *float64
	UseCondor bool
	NoSubmit  bool
	// Binary is the executable the companion script re-invokes; defaults to
	// the running binary.
	Binary     string
	Settings   config.Settings
	Logger     *zap.Logger
	Stdout     io.Writer
	Stderr     io.Writer
	EchoOutput bool
}

type DatasetResult struct {
	Name           string             `json:"name"`
	Dir            string             `json:"dir"`
	Skipped        bool               `json:"skipped"`
	SkipReason     string             `json:"skip_reason,omitempty"`
	Error          string             `json:"error,omitempty"`
	LogCount       int                `json:"log_count"`
	Good           []int              `json:"good"`
	Bad            []int              `json:"bad"`
	Ignored        []int              `json:"ignored"`
	ResubmitFile   string             `json:"resubmit_file,omitempty"`
	Files          []string           `json:"files"`
	TotalEvents    float64            `json:"total_events"`
	ChannelEvents  map[string]float64 `json:"channel_events,omitempty"`
	CrossSection   float64            `json:"cross_section"`
	RanOverSkim    bool               `json:"ran_over_skim"`
	Weight         float64            `json:"weight"`
	WeightedEvents float64            `json:"weighted_events"`
	EffectiveLumi  float64            `json:"effective_lumi"`
	Output         string             `json:"output,omitempty"`
	OutputInfo     string             `json:"output_info,omitempty"`
	MergeError     string             `json:"merge_error,omitempty"`
}

type CompositeResult struct {
	Name       string   `json:"name"`
	Members    []string `json:"members"`
	Missing    []string `json:"missing"`
	Output     string   `json:"output,omitempty"`
	Skipped    bool     `json:"skipped"`
	MergeError string   `json:"merge_error,omitempty"`
}

type Result struct {
	SessionID       string            `json:"session_id"`
	Mode            string            `json:"mode"`
	WorkDir         string            `json:"work_dir"`
	IntLumi         float64           `json:"int_lumi"`
	Datasets        []DatasetResult   `json:"datasets"`
	Composites      []CompositeResult `json:"composites"`
	SubmitFile      string            `json:"submit_file,omitempty"`
	CompanionScript string            `json:"companion_script,omitempty"`
	Submitted       bool              `json:"submitted"`
	ClusterID       string            `json:"cluster_id,omitempty"`
}

type runner struct {
	opts    Options
	workDir string
	lumi    float64
	session string
	log     *zap.Logger
}

// Run merges every split dataset of the work directory, then either merges
// the composites locally or prepares and submits the condor merge jobs.
func Run(ctx context.Context, opts Options) (Result, error) {
	workDir, err := ResolveWorkDir(opts.BaseDir, opts.CondorRoot, opts.WorkDir)
	if err != nil {
		return Result{}, err
	}
	p, err := resolvePlan(opts.LocalConfigPath, opts.Dataset, opts.IntLumi, opts.UseCondor)
	if err != nil {
		return Result{}, err
	}
	if info, err := os.Stat(workDir); err != nil || !info.IsDir() {
		return Result{}, fmt.Errorf("work directory %s does not exist", workDir)
	}
	if !opts.UseCondor {
		if err := mergetool.CheckTool(opts.Settings.MergeTool); err != nil {
			return Result{}, err
		}
	}

	session := uuid.NewString()
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("session", session))

	lock, err := runstore.AcquireWorkLock(workDir, session)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = lock.Release()
	}()

	r := &runner{opts: opts, workDir: workDir, lumi: p.lumi, session: session, log: log}
	res := Result{
		SessionID:  session,
		Mode:       ModeLocal,
		WorkDir:    workDir,
		IntLumi:    p.lumi,
		Datasets:   make([]DatasetResult, 0, len(p.datasets)),
		Composites: []CompositeResult{},
	}
	if opts.UseCondor {
		res.Mode = ModeCondor
	}

	for _, ds := range p.datasets {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Datasets = append(res.Datasets, r.processDataset(ctx, ds))
	}

	if !opts.UseCondor {
		for _, comp := range p.composites {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			res.Composites = append(res.Composites, r.mergeComposite(ctx, comp))
		}
		return res, nil
	}

	if err := r.prepareCondor(ctx, p, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (r *runner) processDataset(ctx context.Context, name string) DatasetResult {
	dir := filepath.Join(r.workDir, name)
	res := DatasetResult{Name: name, Dir: dir, Good: []int{}, Bad: []int{}, Ignored: []int{}, Files: []string{}}
	log := r.log.With(zap.String("dataset", name))

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Warn("dataset directory does not exist, skipping", zap.String("dir", dir))
		return skip(res, SkipMissingDirectory, nil)
	}

	scan, err := joblog.Scan(dir)
	if err != nil {
		log.Error("job log scan failed", zap.Error(err))
		return skip(res, SkipLogScanFailed, err)
	}
	res.LogCount = scan.LogCount()
	res.Good = scan.Good
	res.Bad = scan.Bad
	res.Ignored = scan.Ignored
	for _, job := range scan.Jobs {
		if job.Status == model.JobBad {
			log.Warn("job has non zero exit code", zap.Int("job", job.Index), zap.Int("return_value", *job.ExitCode))
		}
	}
	if len(scan.Bad) > 0 {
		path, err := condor.WriteResubmission(dir, condor.OriginalSubmitFile, scan.Bad)
		if err != nil {
			log.Warn("could not write resubmission description", zap.Error(err))
		} else {
			res.ResubmitFile = path
			log.Info("wrote resubmission description", zap.String("file", path), zap.Int("jobs", len(scan.Bad)))
		}
	}

	candidates := goodOutputs(dir, scan.Good, log)
	if len(candidates) == 0 {
		log.Warn("there are no good root files to merge")
		return skip(res, SkipNoGoodFiles, nil)
	}

	info, err := config.LoadDatasetInfo(dir, name)
	if err != nil {
		log.Error("dataset info unavailable", zap.Error(err))
		return skip(res, SkipDatasetInfo, err)
	}
	res.CrossSection = info.CrossSection
	res.RanOverSkim = info.Skim != nil

	counts, files := rootfile.CountEvents(candidates, log)
	res.TotalEvents = counts.Total
	res.ChannelEvents = counts.Channels
	res.Files = files
	if len(files) == 0 {
		log.Warn("every candidate root file is unreadable")
		return skip(res, SkipNoGoodFiles, nil)
	}

	if counts.Total <= 0 {
		if err := writeSkimBookkeeping(dir, counts.Total, counts, log); err != nil {
			log.Warn("skim bookkeeping failed", zap.Error(err))
		}
		return skip(res, SkipZeroEvents, nil)
	}

	w := weight.Compute(weight.Inputs{
		Lumi:         r.lumi,
		CrossSection: info.CrossSection,
		Total:        counts.Total,
		Skim:         info.Skim,
	})
	res.Weight = w
	res.WeightedEvents = w * counts.Total
	res.EffectiveLumi = weight.EffectiveLumi(counts.Total, info.CrossSection)

	original := counts.Total
	if info.Skim != nil {
		original = info.Skim.Original
	}
	if err := writeSkimBookkeeping(dir, original, counts, log); err != nil {
		log.Warn("skim bookkeeping failed", zap.Error(err))
	}

	inputs := baseNames(files)
	if r.opts.UseCondor {
		infoPath := runstore.OutputInfoPath(dir, name)
		out := model.OutputInfo{
			SchemaVersion:     outputInfoSchemaVersion,
			GeneratedAt:       time.Now().UTC().Format(time.RFC3339),
			SessionID:         r.session,
			Dataset:           name,
			InputFiles:        inputs,
			InputFileString:   mergetool.FileString(inputs),
			InputWeightString: weight.String(w, len(inputs)),
			Weight:            w,
		}
		if err := runstore.SaveOutputInfo(infoPath, out); err != nil {
			log.Error("could not write output info", zap.Error(err))
			res.Error = err.Error()
			return res
		}
		res.OutputInfo = infoPath
		return res
	}

	output := filepath.Join(r.workDir, name+".root")
	weights := make([]float64, len(inputs))
	for i := range weights {
		weights[i] = w
	}
	if err := r.runMerge(ctx, mergetool.Request{
		Tool:    r.opts.Settings.MergeTool,
		Dir:     dir,
		Inputs:  inputs,
		Output:  output,
		Weights: weights,
	}); err != nil {
		log.Warn("merge tool failed", zap.Error(err))
		res.MergeError = err.Error()
		return res
	}
	res.Output = output
	log.Info("merged dataset",
		zap.Int("files", len(inputs)),
		zap.Int("jobs", res.LogCount),
		zap.Float64("events", counts.Total),
		zap.Float64("weight", w),
	)
	return res
}

func (r *runner) mergeComposite(ctx context.Context, comp config.Composite) CompositeResult {
	res := CompositeResult{Name: comp.Name, Members: []string{}, Missing: []string{}}
	log := r.log.With(zap.String("composite", comp.Name))

	for _, member := range comp.Members {
		file := member + ".root"
		if !runstore.Exists(filepath.Join(r.workDir, file)) {
			log.Warn("member output does not exist, composite will not be complete", zap.String("member", member))
			res.Missing = append(res.Missing, member)
			continue
		}
		res.Members = append(res.Members, file)
	}
	if len(res.Members) == 0 {
		log.Warn("no member outputs present, skipping composite")
		res.Skipped = true
		return res
	}

	output := filepath.Join(r.workDir, comp.Name+".root")
	if err := r.runMerge(ctx, mergetool.Request{
		Tool:   r.opts.Settings.MergeTool,
		Dir:    r.workDir,
		Inputs: res.Members,
		Output: output,
	}); err != nil {
		log.Warn("merge tool failed", zap.Error(err))
		res.MergeError = err.Error()
		return res
	}
	res.Output = output
	return res
}

func (r *runner) runMerge(ctx context.Context, req mergetool.Request) error {
	logFile, err := os.OpenFile(filepath.Join(req.Dir, mergeLogName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open merge log: %w", err)
	}
	defer logFile.Close()

	_, err = mergetool.Run(ctx, req, mergetool.RunOptions{
		Stdout:     r.opts.Stdout,
		Stderr:     r.opts.Stderr,
		LogWriter:  logFile,
		EchoOutput: r.opts.EchoOutput,
	})
	return err
}

func (r *runner) prepareCondor(ctx context.Context, p plan, res *Result) error {
	datasets := make([]string, 0, len(res.Datasets))
	infos := make([]string, 0, len(res.Datasets))
	for _, d := range res.Datasets {
		if d.OutputInfo == "" {
			continue
		}
		datasets = append(datasets, d.Name)
		infos = append(infos, "./"+d.Name+"/"+runstore.OutputInfoName(d.Name))
	}
	if len(datasets) == 0 {
		r.log.Warn("no dataset is ready for condor merging, nothing to submit")
		return nil
	}

	binary := strings.TrimSpace(r.opts.Binary)
	if binary == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolve mergeout executable: %w", err)
		}
		binary = exe
	}

	submitPath := filepath.Join(r.workDir, condor.MergeSubmitFile)
	submit := condor.RenderMergeSubmission(condor.MergeSubmission{
		Options:   condor.Merge(condor.DefaultTemplate(), p.condorArgs),
		Datasets:  datasets,
		InputInfo: infos,
	})
	if err := runstore.WriteBytes(submitPath, []byte(submit)); err != nil {
		return err
	}
	res.SubmitFile = submitPath

	scriptPath := filepath.Join(r.workDir, condor.CompanionScriptFile)
	script := condor.RenderCompanionScript(condor.CompanionScript{Binary: binary, WorkDir: r.workDir, Datasets: datasets})
	if err := runstore.WriteExecutable(scriptPath, []byte(script)); err != nil {
		return err
	}
	res.CompanionScript = scriptPath

	if r.opts.NoSubmit {
		return nil
	}
	clusterID, err := condor.Submit(ctx, r.opts.Settings.CondorSubmit, r.workDir, condor.MergeSubmitFile)
	if err != nil {
		return err
	}
	res.Submitted = true
	res.ClusterID = clusterID
	r.log.Info("submitted merge jobs", zap.String("cluster", clusterID), zap.Int("jobs", len(datasets)))
	return nil
}

// goodOutputs lists the *_<index>.root files of the good jobs, in job order.
func goodOutputs(dir string, good []int, log *zap.Logger) []string {
	out := []string{}
	for _, idx := range good {
		matches, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf("*_%d.root", idx)))
		if err != nil || len(matches) == 0 {
			log.Warn("no output file for good job", zap.Int("job", idx))
			continue
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func skip(res DatasetResult, reason string, err error) DatasetResult {
	res.Skipped = true
	res.SkipReason = reason
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
