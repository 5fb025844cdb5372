package step

import "time"

// Status is the outcome of one executed step.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

func (s Status) String() string { return string(s) }

// Result records what happened to a single step.
type Result struct {
	Name     string
	Index    int // 1-based position in the run
	Total    int
	Status   Status
	Message  string
	Optional bool
	Duration time.Duration
}

// Fatal reports whether the result halts the run.
func (r Result) Fatal() bool {
	return r.Status == StatusFailed && !r.Optional
}
