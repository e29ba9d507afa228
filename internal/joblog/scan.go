// Package joblog classifies cluster jobs from their HTCondor user logs.
package joblog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"mergeout/internal/model"
)

const returnValueMarker = "return value"

var (
	ErrMalformedLog = errors.New("malformed job log")

	reLogName     = regexp.MustCompile(`^condor_(\d+)\.log$`)
	reReturnValue = regexp.MustCompile(`return value (-?\d+)`)
)

type Result struct {
	Jobs    []model.Job `json:"jobs"`
	Good    []int       `json:"good"`
	Bad     []int       `json:"bad"`
	Ignored []int       `json:"ignored"`
}

func (r Result) LogCount() int {
	return len(r.Jobs)
}

// Scan reads every condor_<N>.log in dir, ordered by N.
func Scan(dir string) (Result, error) {
	paths, err := LogFiles(dir)
	if err != nil {
		return Result{}, err
	}
	return ScanFiles(paths)
}

// LogFiles lists the job logs of a dataset directory in job index order.
func LogFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read log directory %s: %w", dir, err)
	}
	type indexed struct {
		index int
		path  string
	}
	logs := make([]indexed, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := reLogName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		logs = append(logs, indexed{index: idx, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].index < logs[j].index })

	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.path)
	}
	return out, nil
}

// ScanFiles classifies the given logs. The job index is taken from the file name.
func ScanFiles(paths []string) (Result, error) {
	res := Result{
		Jobs:    make([]model.Job, 0, len(paths)),
		Good:    []int{},
		Bad:     []int{},
		Ignored: []int{},
	}
	for _, p := range paths {
		m := reLogName.FindStringSubmatch(filepath.Base(p))
		if m == nil {
			return Result{}, fmt.Errorf("%w: unexpected log name %s", ErrMalformedLog, p)
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			return Result{}, fmt.Errorf("%w: unexpected log name %s", ErrMalformedLog, p)
		}

		code, err := lastExitCodeFromFile(p)
		if err != nil {
			return Result{}, err
		}
		job := model.NewJob(index, p, code)
		res.Jobs = append(res.Jobs, job)
		switch job.Status {
		case model.JobGood:
			res.Good = append(res.Good, index)
		case model.JobBad:
			res.Bad = append(res.Bad, index)
		default:
			res.Ignored = append(res.Ignored, index)
		}
	}
	return res, nil
}

func lastExitCodeFromFile(path string) (*int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open job log %s: %w", path, err)
	}
	defer f.Close()

	code, err := LastExitCode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return code, nil
}

// LastExitCode returns the code of the last "return value N" line, or nil when
// the log has none.
func LastExitCode(r io.Reader) (*int, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	last := ""
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, returnValueMarker) {
			last = line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read job log: %w", err)
	}
	if last == "" {
		return nil, nil
	}

	m := reReturnValue.FindStringSubmatch(last)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedLog, strings.TrimSpace(last))
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedLog, strings.TrimSpace(last))
	}
	return &code, nil
}
