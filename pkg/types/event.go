package types

// QueueEventType defines the type of event emitted by the prompt queue.
type QueueEventType string

const (
	EventTypeRunStart    QueueEventType = "run_start"    // EventTypeRunStart indicates a new run has been accepted and draining begins.
	EventTypeProgress    QueueEventType = "progress"     // EventTypeProgress carries the fractional completion of the run.
	EventTypeResult      QueueEventType = "result"       // EventTypeResult carries one PromptResult (real or placeholder).
	EventTypeUsageUpdate QueueEventType = "usage_update" // EventTypeUsageUpdate carries the running usage totals.
	EventTypeCompleted   QueueEventType = "completed"    // EventTypeCompleted indicates the queue drained to empty.
	EventTypeStopped     QueueEventType = "stopped"      // EventTypeStopped indicates the run was cancelled by Stop.
)

// QueueEvent represents an event emitted by the prompt queue during a run.
type QueueEvent struct {
	// Metadata holds optional additional information about the event.
	Metadata map[string]interface{}

	// Result is the prompt result (for result events).
	Result *PromptResult

	// Usage contains the usage totals after the last accounted item (for usage events).
	Usage *UsageTotals

	// Type indicates the kind of event.
	Type QueueEventType

	// RunID identifies the run that produced the event.
	RunID string

	// Progress is processed/total in the range [0, 1] (for progress events).
	Progress float64

	// Total is the number of images accepted for the run (for run start events).
	Total int
}

// NewRunStartEvent creates a run start event.
func NewRunStartEvent(runID string, total int) *QueueEvent {
	return &QueueEvent{
		Type:     EventTypeRunStart,
		RunID:    runID,
		Total:    total,
		Metadata: make(map[string]interface{}),
	}
}

// NewProgressEvent creates a progress event.
func NewProgressEvent(runID string, fraction float64) *QueueEvent {
	return &QueueEvent{
		Type:     EventTypeProgress,
		RunID:    runID,
		Progress: fraction,
		Metadata: make(map[string]interface{}),
	}
}

// NewResultEvent creates a result event.
func NewResultEvent(runID string, result PromptResult) *QueueEvent {
	return &QueueEvent{
		Type:     EventTypeResult,
		RunID:    runID,
		Result:   &result,
		Metadata: make(map[string]interface{}),
	}
}

// NewUsageUpdateEvent creates a usage update event.
func NewUsageUpdateEvent(runID string, usage UsageTotals) *QueueEvent {
	return &QueueEvent{
		Type:     EventTypeUsageUpdate,
		RunID:    runID,
		Usage:    &usage,
		Metadata: make(map[string]interface{}),
	}
}

// NewCompletedEvent creates a completed event.
func NewCompletedEvent(runID string) *QueueEvent {
	return &QueueEvent{
		Type:     EventTypeCompleted,
		RunID:    runID,
		Metadata: make(map[string]interface{}),
	}
}

// NewStoppedEvent creates a stopped event.
func NewStoppedEvent(runID string) *QueueEvent {
	return &QueueEvent{
		Type:     EventTypeStopped,
		RunID:    runID,
		Metadata: make(map[string]interface{}),
	}
}

// IsTerminal reports whether no further events follow this one for its run.
func (e *QueueEvent) IsTerminal() bool {
	return e.Type == EventTypeCompleted || e.Type == EventTypeStopped
}
