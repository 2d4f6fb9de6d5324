package queue

import "github.com/entrhq/promptlens/pkg/types"

// Sink receives a run's notifications. All calls for one run come from the
// run's drain goroutine, in order: for every processed image OnProgress,
// OnResult, OnUsageUpdate; then OnCompleted once the queue is empty.
// A stopped run never calls OnCompleted.
type Sink interface {
	OnProgress(fraction float64)
	OnResult(result types.PromptResult)
	OnUsageUpdate(usage types.UsageTotals)
	OnCompleted()
}

// RunObserver is implemented by sinks that also want run boundaries.
// Both are called from the run's drain goroutine: OnRunStart before its
// first notification, OnRunStopped after its last.
type RunObserver interface {
	OnRunStart(runID string, total int)
	OnRunStopped(runID string)
}

// RunScoped is implemented by sinks that tag notifications with a run ID.
// The processor sends each run's notifications to ForRun(runID).
type RunScoped interface {
	ForRun(runID string) Sink
}

// NopSink discards every notification.
type NopSink struct{}

func (NopSink) OnProgress(float64)              {}
func (NopSink) OnResult(types.PromptResult)     {}
func (NopSink) OnUsageUpdate(types.UsageTotals) {}
func (NopSink) OnCompleted()                    {}

// ChannelSink forwards notifications as QueueEvents on a channel.
// Sends block when the buffer is full, so a consumer must keep reading
// until it sees a terminal event.
type ChannelSink struct {
	events chan *types.QueueEvent
	runID  string
}

var (
	_ Sink        = (*ChannelSink)(nil)
	_ RunObserver = (*ChannelSink)(nil)
	_ RunScoped   = (*ChannelSink)(nil)
)

// NewChannelSink creates a sink whose channel holds bufferSize events.
func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{events: make(chan *types.QueueEvent, bufferSize)}
}

// Events returns the event channel.
func (s *ChannelSink) Events() <-chan *types.QueueEvent {
	return s.events
}

// ForRun implements RunScoped. The returned sink shares the channel.
func (s *ChannelSink) ForRun(runID string) Sink {
	return &ChannelSink{events: s.events, runID: runID}
}

// OnRunStart implements RunObserver.
func (s *ChannelSink) OnRunStart(runID string, total int) {
	s.events <- types.NewRunStartEvent(runID, total)
}

// OnRunStopped implements RunObserver.
func (s *ChannelSink) OnRunStopped(runID string) {
	s.events <- types.NewStoppedEvent(runID)
}

// OnProgress implements Sink.
func (s *ChannelSink) OnProgress(fraction float64) {
	s.events <- types.NewProgressEvent(s.runID, fraction)
}

// OnResult implements Sink.
func (s *ChannelSink) OnResult(result types.PromptResult) {
	s.events <- types.NewResultEvent(s.runID, result)
}

// OnUsageUpdate implements Sink.
func (s *ChannelSink) OnUsageUpdate(usage types.UsageTotals) {
	s.events <- types.NewUsageUpdateEvent(s.runID, usage)
}

// OnCompleted implements Sink.
func (s *ChannelSink) OnCompleted() {
	s.events <- types.NewCompletedEvent(s.runID)
}
