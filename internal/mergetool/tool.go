// Package mergetool drives the external weighted histogram merger.
package mergetool

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"mergeout/internal/weight"
)

const DefaultBinary = "mergeTFileServiceHistograms"

type OutputStream string

const (
	StreamStdout OutputStream = "stdout"
	StreamStderr OutputStream = "stderr"
)

// Request is one merge: inputs are weighted with Weights in order; a nil
// Weights slice merges unweighted.
type Request struct {
	Tool    string
	Dir     string
	Inputs  []string
	Output  string
	Weights []float64
}

type RunOptions struct {
	Stdout     io.Writer
	Stderr     io.Writer
	LogWriter  io.Writer
	EchoOutput bool
	Progress   func(stream OutputStream, line string)
}

type Result struct {
	Command []string `json:"command"`
}

type DependencyReport struct {
	MergeToolFound    bool   `json:"merge_tool_found"`
	MergeToolPath     string `json:"merge_tool_path,omitempty"`
	CondorSubmitFound bool   `json:"condor_submit_found"`
	CondorSubmitPath  string `json:"condor_submit_path,omitempty"`
}

func DependencyStatus(tool, condorSubmit string) DependencyReport {
	report := DependencyReport{}
	if path, err := exec.LookPath(binaryOrDefault(tool)); err == nil {
		report.MergeToolFound = true
		report.MergeToolPath = path
	}
	submit := strings.TrimSpace(condorSubmit)
	if submit == "" {
		submit = "condor_submit"
	}
	if path, err := exec.LookPath(submit); err == nil {
		report.CondorSubmitFound = true
		report.CondorSubmitPath = path
	}
	return report
}

func CheckTool(tool string) error {
	bin := binaryOrDefault(tool)
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("missing dependency: %s is not installed or not on PATH", bin)
	}
	return nil
}

// FileString is the space separated input list recorded for replay.
func FileString(files []string) string {
	return strings.Join(files, " ")
}

// Args builds the argument list: -i <inputs...> -o <output> [-w <weights>].
func Args(req Request) ([]string, error) {
	if len(req.Inputs) == 0 {
		return nil, fmt.Errorf("at least one input file is required")
	}
	if strings.TrimSpace(req.Output) == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if req.Weights != nil && len(req.Weights) != len(req.Inputs) {
		return nil, fmt.Errorf("weight count %d does not match input count %d", len(req.Weights), len(req.Inputs))
	}

	args := make([]string, 0, len(req.Inputs)+5)
	args = append(args, "-i")
	args = append(args, req.Inputs...)
	args = append(args, "-o", req.Output)
	if req.Weights != nil {
		ws := make([]string, len(req.Weights))
		for i, w := range req.Weights {
			ws[i] = weight.Format(w)
		}
		args = append(args, "-w", strings.Join(ws, ","))
	}
	return args, nil
}

// Command returns the full argv including the tool.
func Command(req Request) ([]string, error) {
	args, err := Args(req)
	if err != nil {
		return nil, err
	}
	return append([]string{binaryOrDefault(req.Tool)}, args...), nil
}

// ArgsFromStrings rebuilds a request from the recorded replay strings.
func ArgsFromStrings(fileString, weightString, output string) []string {
	args := []string{"-i"}
	args = append(args, strings.Fields(fileString)...)
	args = append(args, "-o", output)
	if strings.TrimSpace(weightString) != "" {
		args = append(args, "-w", strings.TrimSpace(weightString))
	}
	return args
}

func Run(ctx context.Context, req Request, opts RunOptions) (Result, error) {
	args, err := Args(req)
	if err != nil {
		return Result{}, err
	}
	return RunArgs(ctx, req.Tool, req.Dir, args, opts)
}

// RunArgs executes the tool in dir with prepared arguments.
func RunArgs(ctx context.Context, tool, dir string, args []string, opts RunOptions) (Result, error) {
	bin := binaryOrDefault(tool)
	res := Result{Command: append([]string{bin}, args...)}
	if err := runCommand(ctx, bin, dir, args, opts); err != nil {
		return res, err
	}
	return res, nil
}

func binaryOrDefault(tool string) string {
	if t := strings.TrimSpace(tool); t != "" {
		return t
	}
	return DefaultBinary
}

func runCommand(ctx context.Context, bin, dir string, args []string, opts RunOptions) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("setup stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("setup stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", bin, err)
	}

	var outBuf strings.Builder
	var errBuf strings.Builder
	var mu sync.Mutex
	var wg sync.WaitGroup

	read := func(stream OutputStream, r io.Reader, echoW io.Writer) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1024*1024)
		scanner.Split(splitByNewlineOrCR)
		for scanner.Scan() {
			line := scanner.Text()
			mu.Lock()
			appendLimited(&outBuf, &errBuf, stream, line)
			if opts.LogWriter != nil {
				_, _ = io.WriteString(opts.LogWriter, line+"\n")
			}
			mu.Unlock()

			if opts.EchoOutput && echoW != nil {
				_, _ = io.WriteString(echoW, line+"\n")
			}
			if opts.Progress != nil {
				opts.Progress(stream, line)
			}
		}
	}

	wg.Add(2)
	go read(StreamStdout, stdoutPipe, opts.Stdout)
	go read(StreamStderr, stderrPipe, opts.Stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		mu.Lock()
		defer mu.Unlock()
		return fmt.Errorf("%s failed: %w\n%s\n%s", bin, err, strings.TrimSpace(errBuf.String()), strings.TrimSpace(outBuf.String()))
	}
	return nil
}

func splitByNewlineOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i == 0 {
				return 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func appendLimited(outBuf, errBuf *strings.Builder, stream OutputStream, line string) {
	const maxKeep = 8192
	b := outBuf
	if stream == StreamStderr {
		b = errBuf
	}
	if b.Len() >= maxKeep {
		return
	}
	toWrite := line + "\n"
	remain := maxKeep - b.Len()
	if len(toWrite) > remain {
		toWrite = toWrite[:remain]
	}
	b.WriteString(toWrite)
}
