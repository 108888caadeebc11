// pkg/pipeline/result.go
package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Stage names one phase of the batch run
type Stage string

const (
	StagePrepare Stage = "prepare"
	StageLoad    Stage = "load"
	StageCube    Stage = "cube"
)

// AllStages is the default full run, in execution order
var AllStages = []Stage{StagePrepare, StageLoad, StageCube}

// StageResult records the outcome of a single stage
type StageResult struct {
	Stage     Stage
	Rows      int64 // records written by the stage, where meaningful
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Err       error
}

// Complete stamps the end of a stage and captures its error
func (r *StageResult) Complete(err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Err = err
}

// Summary aggregates one pipeline run
type Summary struct {
	RunID     string
	Results   []StageResult
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// NewSummary initializes a run summary with a fresh run identifier
func NewSummary() *Summary {
	return &Summary{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
	}
}

// Complete stamps the end of the run
func (s *Summary) Complete() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// Add records a stage result
func (s *Summary) Add(result StageResult) {
	s.Results = append(s.Results, result)
}

// Failed reports whether any stage errored
func (s *Summary) Failed() bool {
	for _, r := range s.Results {
		if r.Err != nil {
			return true
		}
	}
	return false
}
