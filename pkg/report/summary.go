// Package report records prompt runs and renders them for the console and
// for on-disk artifacts.
package report

import (
	"sync"
	"time"

	"github.com/entrhq/promptlens/pkg/types"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusStopped   = "stopped"
	StatusFailed    = "failed"
)

// RunSummary contains everything known about one prompt run.
type RunSummary struct {
	RunID        string               `json:"run_id"`
	PageURL      string               `json:"page_url"`
	Model        string               `json:"model"`
	Status       string               `json:"status"`
	Error        string               `json:"error,omitempty"`
	StartTime    time.Time            `json:"start_time"`
	EndTime      time.Time            `json:"end_time"`
	Duration     time.Duration        `json:"duration"`
	Total        int                  `json:"total"`
	Placeholders int                  `json:"placeholders"`
	Results      []types.PromptResult `json:"results"`
	Usage        types.UsageTotals    `json:"usage"`
}

// Processed returns the number of accounted images.
func (s *RunSummary) Processed() int {
	return len(s.Results)
}

// Prompts returns the generated prompt texts, skipping placeholders.
func (s *RunSummary) Prompts() []string {
	var prompts []string
	for _, r := range s.Results {
		if !r.Placeholder {
			prompts = append(prompts, r.PromptText)
		}
	}
	return prompts
}

// Recorder builds a RunSummary from queue events.
type Recorder struct {
	mu      sync.Mutex
	summary RunSummary
	now     func() time.Time
}

// NewRecorder creates a recorder for a run against pageURL with model.
func NewRecorder(pageURL, model string) *Recorder {
	return &Recorder{
		summary: RunSummary{PageURL: pageURL, Model: model},
		now:     time.Now,
	}
}

// Record folds one event into the summary. Events from other runs than the
// first one seen are ignored.
func (r *Recorder) Record(ev *types.QueueEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &r.summary
	if s.RunID != "" && ev.RunID != s.RunID {
		return
	}

	switch ev.Type {
	case types.EventTypeRunStart:
		s.RunID = ev.RunID
		s.Total = ev.Total
		s.StartTime = r.now()
	case types.EventTypeResult:
		if ev.Result != nil {
			s.Results = append(s.Results, *ev.Result)
			if ev.Result.Placeholder {
				s.Placeholders++
			}
		}
	case types.EventTypeUsageUpdate:
		if ev.Usage != nil {
			s.Usage = *ev.Usage
		}
	case types.EventTypeCompleted:
		r.finish(StatusCompleted)
	case types.EventTypeStopped:
		r.finish(StatusStopped)
	}
}

// Fail marks the run as failed before or during processing.
func (r *Recorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.summary.StartTime.IsZero() {
		r.summary.StartTime = r.now()
	}
	r.summary.Error = err.Error()
	r.finish(StatusFailed)
}

func (r *Recorder) finish(status string) {
	s := &r.summary
	s.Status = status
	s.EndTime = r.now()
	if !s.StartTime.IsZero() {
		s.Duration = s.EndTime.Sub(s.StartTime)
	}
}

// Summary returns a copy of the summary so far.
func (r *Recorder) Summary() *RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.summary
	s.Results = append([]types.PromptResult(nil), r.summary.Results...)
	return &s
}
