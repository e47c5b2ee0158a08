package reports

import "time"

// StepStatus is the outcome of one pipeline step
type StepStatus string

const (
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// Step names in execution order
const (
	StepNormalize = "normalize"
	StepLoad      = "load"
	StepFilter    = "filter"
	StepDates     = "dates"
	StepLocation  = "location"
	StepCharts    = "charts"
	StepExport    = "export"
)

// StepState records one step of a run
type StepState struct {
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	Rows      int        `json:"rows"`
	Message   string     `json:"message,omitempty"`
	Error     string     `json:"error,omitempty"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

func startStep(name string) *StepState {
	return &StepState{Name: name, Status: StepStatusActive, StartTime: time.Now()}
}

// Complete marks the step done with the number of rows it produced
func (s *StepState) Complete(rows int) {
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
	s.Rows = rows
}

// Fail marks the step as failed
func (s *StepState) Fail(err error) {
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err.Error()
}

// Skip marks the step as skipped with the given reason
func (s *StepState) Skip(reason string) {
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// Duration returns how long the step ran, or has been running
func (s *StepState) Duration() time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}
