package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"mergeout/internal/config"
	"mergeout/internal/mergetool"
	"mergeout/internal/runstore"
)

type ReplayOptions struct {
	InfoPath string
	// Output defaults to ../<dataset>.root relative to the info file.
	Output     string
	Settings   config.Settings
	Logger     *zap.Logger
	Stdout     io.Writer
	Stderr     io.Writer
	EchoOutput bool
}

type ReplayResult struct {
	Dataset string   `json:"dataset"`
	Dir     string   `json:"dir"`
	Output  string   `json:"output"`
	Command []string `json:"command"`
}

// Replay runs the merge recorded in an output info file. It is what the
// condor merge jobs execute.
func Replay(ctx context.Context, opts ReplayOptions) (ReplayResult, error) {
	infoPath := strings.TrimSpace(opts.InfoPath)
	if infoPath == "" {
		return ReplayResult{}, errors.New("output info path is required")
	}
	info, err := runstore.LoadOutputInfo(infoPath)
	if err != nil {
		return ReplayResult{}, err
	}
	if strings.TrimSpace(info.InputFileString) == "" {
		return ReplayResult{}, fmt.Errorf("%s lists no input files", infoPath)
	}

	dir := filepath.Dir(infoPath)
	output := strings.TrimSpace(opts.Output)
	if output == "" {
		output = filepath.Join("..", info.Dataset+".root")
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("dataset", info.Dataset), zap.String("session", info.SessionID))

	logFile, err := os.OpenFile(filepath.Join(dir, mergeLogName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("open merge log: %w", err)
	}
	defer logFile.Close()

	args := mergetool.ArgsFromStrings(info.InputFileString, info.InputWeightString, output)
	res, err := mergetool.RunArgs(ctx, opts.Settings.MergeTool, dir, args, mergetool.RunOptions{
		Stdout:     opts.Stdout,
		Stderr:     opts.Stderr,
		LogWriter:  logFile,
		EchoOutput: opts.EchoOutput,
	})
	out := ReplayResult{Dataset: info.Dataset, Dir: dir, Output: output, Command: res.Command}
	if err != nil {
		log.Error("merge tool failed", zap.Error(err))
		return out, err
	}
	log.Info("merged dataset", zap.String("output", output))
	return out, nil
}
