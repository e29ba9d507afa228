package model

// Dataset is one split sample as described by its datasetInfo file.
type Dataset struct {
	Name         string      `json:"name"`
	CrossSection float64     `json:"cross_section"`
	Skim         *SkimCounts `json:"skim,omitempty"`
}

// SkimCounts are the event counts before and after a prior skimming pass.
type SkimCounts struct {
	Original float64 `json:"original_number_of_events"`
	Skimmed  float64 `json:"skim_number_of_events"`
}

// IsData reports whether the dataset is real data (no cross section).
func (d Dataset) IsData() bool {
	return d.CrossSection <= 0
}

// Job is one cluster task and the candidate output it should have produced.
type Job struct {
	Index    int       `json:"index"`
	LogPath  string    `json:"log_path"`
	Status   JobStatus `json:"status"`
	ExitCode *int      `json:"exit_code,omitempty"`
}

// EventCounts accumulates the bookkeeping histograms over all surviving files.
type EventCounts struct {
	Total    float64            `json:"total"`
	Channels map[string]float64 `json:"channels"`
	Order    []string           `json:"-"`
}

func NewEventCounts() EventCounts {
	return EventCounts{Channels: make(map[string]float64)}
}

// AddChannel registers a channel with a zero skim count if it is new.
func (c *EventCounts) AddChannel(name string) {
	if _, ok := c.Channels[name]; ok {
		return
	}
	c.Channels[name] = 0
	c.Order = append(c.Order, name)
}

// OutputInfo is written per dataset in condor mode and consumed by replay.
type OutputInfo struct {
	SchemaVersion     int      `json:"schema_version"`
	GeneratedAt       string   `json:"generated_at"`
	SessionID         string   `json:"session_id"`
	Dataset           string   `json:"dataset"`
	InputFiles        []string `json:"input_files"`
	InputFileString   string   `json:"input_file_string"`
	InputWeightString string   `json:"input_weight_string"`
	Weight            float64  `json:"weight"`
}
