package model

import "fmt"

type JobStatus string

const (
	JobGood    JobStatus = "good"
	JobBad     JobStatus = "bad"
	JobIgnored JobStatus = "ignored"
)

var knownStatuses = map[JobStatus]bool{
	JobGood:    true,
	JobBad:     true,
	JobIgnored: true,
}

func IsKnownStatus(status JobStatus) bool {
	return knownStatuses[status]
}

// ClassifyExitCode maps the last reported return value of a job.
func ClassifyExitCode(code int) JobStatus {
	if code == 0 {
		return JobGood
	}
	return JobBad
}

// NewJob builds a job from its log. A nil code means the log never reported one.
func NewJob(index int, logPath string, code *int) Job {
	job := Job{Index: index, LogPath: logPath, Status: JobIgnored}
	if code != nil {
		c := *code
		job.ExitCode = &c
		job.Status = ClassifyExitCode(c)
	}
	return job
}

func (j Job) String() string {
	if j.ExitCode == nil {
		return fmt.Sprintf("job %d: %s", j.Index, j.Status)
	}
	return fmt.Sprintf("job %d: %s (return value %d)", j.Index, j.Status, *j.ExitCode)
}
