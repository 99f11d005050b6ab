package ledger

import "time"

// Status is the outcome of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one pipeline invocation.
type Run struct {
	ID           string
	Cycle        string
	Effective    string
	Stages       string
	Status       Status
	ErrorMessage string
	Documents    int
	Skipped      int
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Duration returns the elapsed run time, or zero while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Output is one file produced by the transcoder.
type Output struct {
	Airport  string
	Source   string
	Strategy string
	Path     string
}

// Bundle is one written archive.
type Bundle struct {
	Name    string
	Kind    string
	Archive string
	Members int
	SHA256  string
	Size    int64
	URI     string
}
