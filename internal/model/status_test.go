package model

import "testing"

func TestClassifyExitCode(t *testing.T) {
	cases := []struct {
		code int
		want JobStatus
	}{
		{0, JobGood},
		{1, JobBad},
		{-1, JobBad},
		{137, JobBad},
	}

	for _, tc := range cases {
		if got := ClassifyExitCode(tc.code); got != tc.want {
			t.Fatalf("code %d: got %q want %q", tc.code, got, tc.want)
		}
	}
}

func TestNewJob_WithoutCodeIsIgnored(t *testing.T) {
	job := NewJob(3, "condor_3.log", nil)
	if job.Status != JobIgnored {
		t.Fatalf("expected ignored, got %q", job.Status)
	}
	if job.ExitCode != nil {
		t.Fatalf("expected no exit code")
	}
}

func TestNewJob_CopiesCode(t *testing.T) {
	code := 2
	job := NewJob(1, "condor_1.log", &code)
	code = 0
	if job.Status != JobBad || *job.ExitCode != 2 {
		t.Fatalf("unexpected job: %s", job)
	}
}

func TestIsKnownStatus(t *testing.T) {
	if !IsKnownStatus(JobGood) || !IsKnownStatus(JobIgnored) {
		t.Fatalf("expected built-in statuses to be known")
	}
	if IsKnownStatus("running") {
		t.Fatalf("unexpected known status")
	}
}

func TestEventCounts_AddChannelKeepsOrder(t *testing.T) {
	c := NewEventCounts()
	c.AddChannel("b")
	c.AddChannel("a")
	c.AddChannel("b")
	if len(c.Order) != 2 || c.Order[0] != "b" || c.Order[1] != "a" {
		t.Fatalf("unexpected order: %v", c.Order)
	}
}
