package condor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mergeout/internal/runstore"
)

const (
	OriginalSubmitFile = "condor.sub"
	ResubmitFile       = "condor_resubmit.sub"
)

// Resubmission rewrites the original submit description so that it queues
// exactly one job per bad index, in the given order.
func Resubmission(original io.Reader, bad []int) (string, error) {
	if len(bad) == 0 {
		return "", fmt.Errorf("no failed jobs to resubmit")
	}
	first := strconv.Itoa(bad[0])

	var b strings.Builder
	var indexed []string
	scanner := bufio.NewScanner(original)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, processMacro):
			indexed = append(indexed, line)
			b.WriteString(strings.ReplaceAll(line, processMacro, first) + "\n")
		case isQueueLine(line):
			b.WriteString("Queue 1\n\n")
		default:
			b.WriteString(line + "\n")
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read submit description: %w", err)
	}

	for _, idx := range bad[1:] {
		s := strconv.Itoa(idx)
		for _, line := range indexed {
			b.WriteString(strings.ReplaceAll(line, processMacro, s) + "\n")
		}
		b.WriteString("Queue 1\n\n")
	}
	return b.String(), nil
}

// WriteResubmission reads dir/originalName and writes dir/condor_resubmit.sub.
func WriteResubmission(dir, originalName string, bad []int) (string, error) {
	if originalName == "" {
		originalName = OriginalSubmitFile
	}
	f, err := os.Open(filepath.Join(dir, originalName))
	if err != nil {
		return "", fmt.Errorf("open original submit description: %w", err)
	}
	defer f.Close()

	text, err := Resubmission(f, bad)
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, ResubmitFile)
	if err := runstore.WriteBytes(out, []byte(text)); err != nil {
		return "", err
	}
	return out, nil
}

// CountQueued sums the Queue statements of a submit description.
func CountQueued(r io.Reader) (int, error) {
	total := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !isQueueLine(line) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 1 {
			total++
			continue
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, fmt.Errorf("parse queue statement %q: %w", line, err)
		}
		total += n
	}
	return total, scanner.Err()
}

func isQueueLine(line string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && strings.EqualFold(fields[0], KeyQueue)
}
