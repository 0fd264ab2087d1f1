package domain

import (
	"time"

	"github.com/google/uuid"
)

// RawDocument is undecoded input together with the format used to decode it
// ("json", "yaml", or "" to detect from Name).
type RawDocument struct {
	Name   string
	Format string
	Data   []byte
}

// Timings records where a run spent its time.
type Timings struct {
	Decode  time.Duration `json:"decode"`
	Process time.Duration `json:"process"`
}

// Report is what one processing run hands back to its caller.
type Report struct {
	TraceID uuid.UUID `json:"trace_id"`
	Outcome *Outcome  `json:"outcome"`
	Layers  int       `json:"layers"`
	// Aborted is set when a stop-on-failure layer ended the run early.
	Aborted    bool    `json:"aborted"`
	Recorded   int     `json:"recorded"`
	RolledBack int     `json:"rolled_back"`
	Timings    Timings `json:"timings"`
}

// Completed reports whether the whole document completed.
func (r *Report) Completed() bool {
	return r.Outcome != nil && r.Outcome.Completed()
}

// BatchItem is the result for one document of a batch.
type BatchItem struct {
	Name   string
	Report *Report
	Err    error
}
