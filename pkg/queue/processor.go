// Package queue drains collected images through a prompt generator one at a
// time, pacing calls and accumulating token and cost totals.
//
// A Processor runs at most one drain loop. Start resets the totals, accepts the
// images and returns; results arrive on the Sink from the loop's goroutine.
// Stop cancels cooperatively: pending images are dropped at once, an in-flight
// call is left to finish and its response is discarded.
package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/promptlens/pkg/llm"
	"github.com/entrhq/promptlens/pkg/logging"
	"github.com/entrhq/promptlens/pkg/pricing"
	"github.com/entrhq/promptlens/pkg/types"
	"github.com/google/uuid"
)

// DefaultPacing is the pause between two generator calls.
const DefaultPacing = 2000 * time.Millisecond

// ErrRunInProgress is returned by Start while a run is draining.
var ErrRunInProgress = errors.New("a prompt run is already in progress")

// RunConfig carries everything a run needs from the user's settings.
type RunConfig struct {
	APIKey         string
	Model          string
	PromptTemplate string
}

// Validate reports a configuration error for settings that block a run.
func (c RunConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return types.NewConfigurationError("queue.Start", "API key is not set; add it in settings")
	}
	if strings.TrimSpace(c.Model) == "" {
		return types.NewConfigurationError("queue.Start", "no model selected")
	}
	return nil
}

// GeneratorFactory builds the generator for a run from its API key.
type GeneratorFactory func(apiKey string) (llm.Generator, error)

// StaticGenerator returns a factory that always yields g.
func StaticGenerator(g llm.Generator) GeneratorFactory {
	return func(string) (llm.Generator, error) {
		return g, nil
	}
}

// PlaceholderText is the prompt text recorded for an image whose call failed.
func PlaceholderText(model string) string {
	return fmt.Sprintf("Error generating prompt for model %s.", model)
}

// Option configures a Processor.
type Option func(*Processor)

// WithClock sets the clock used for pacing.
func WithClock(clock Clock) Option {
	return func(p *Processor) {
		p.clock = clock
	}
}

// WithPacing overrides the pause between calls.
func WithPacing(d time.Duration) Option {
	return func(p *Processor) {
		p.pacing = d
	}
}

// WithPricing sets the rate table used for cost estimates.
func WithPricing(table pricing.Table) Option {
	return func(p *Processor) {
		p.pricing = table
	}
}

// WithTokenCounter sets how response tokens are counted.
func WithTokenCounter(counter llm.TokenCounter) Option {
	return func(p *Processor) {
		p.counter = counter
	}
}

// WithLogger sets the processor's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Snapshot is a consistent view of the processor state.
type Snapshot struct {
	RunID     string
	Running   bool
	Total     int
	Processed int
	Pending   int
	Usage     types.UsageTotals
}

// Processor is the prompt queue.
type Processor struct {
	factory GeneratorFactory
	sink    Sink
	clock   Clock
	pacing  time.Duration
	pricing pricing.Table
	counter llm.TokenCounter
	logger  *logging.Logger

	mu         sync.Mutex
	pending    []types.ImageRecord
	total      int
	processed  int
	running    bool
	usage      types.UsageTotals
	generation uint64
	runID      string
	cfg        RunConfig
	stopCh     chan struct{}
	done       chan struct{}
}

// NewProcessor creates a processor that reports to sink. A nil sink discards
// notifications.
func NewProcessor(factory GeneratorFactory, sink Sink, opts ...Option) *Processor {
	if sink == nil {
		sink = NopSink{}
	}

	done := make(chan struct{})
	close(done)

	p := &Processor{
		factory: factory,
		sink:    sink,
		clock:   RealClock(),
		pacing:  DefaultPacing,
		pricing: pricing.Default,
		counter: llm.CharEstimator{},
		logger:  logging.NewNopLogger(),
		done:    done,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins a run over images. A configuration error leaves the processor
// untouched. Starting while a run is draining returns ErrRunInProgress.
// An empty list completes after one step. Cancelling ctx stops the run.
func (p *Processor) Start(ctx context.Context, images []types.ImageRecord, cfg RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrRunInProgress
	}

	generator, err := p.factory(cfg.APIKey)
	if err != nil {
		p.mu.Unlock()
		return types.WrapError(types.KindConfiguration, "queue.Start", "could not create generator", err)
	}

	p.generation++
	p.runID = uuid.New().String()
	p.cfg = cfg
	p.pending = append([]types.ImageRecord(nil), images...)
	p.total = len(images)
	p.processed = 0
	p.usage = types.UsageTotals{}
	p.running = true
	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})

	r := run{
		id:         p.runID,
		generation: p.generation,
		total:      p.total,
		cfg:        cfg,
		generator:  generator,
		stopCh:     p.stopCh,
		done:       p.done,
	}
	p.mu.Unlock()

	p.logger.Infof("run %s started: %d images, model %s", r.id, r.total, cfg.Model)
	go p.drain(ctx, r)
	return nil
}

// Stop ends the current run. Pending images are discarded and any in-flight
// response will be ignored. Calling Stop with no run, or twice, does nothing.
func (p *Processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Processor) stopLocked() {
	if !p.running {
		return
	}
	p.running = false
	p.pending = nil
	close(p.stopCh)
	p.logger.Infof("run %s stopped after %d of %d images", p.runID, p.processed, p.total)
}

// Done returns a channel closed when the latest run's drain loop has exited.
func (p *Processor) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Running reports whether a run is draining.
func (p *Processor) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Snapshot returns the current state.
func (p *Processor) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		RunID:     p.runID,
		Running:   p.running,
		Total:     p.total,
		Processed: p.processed,
		Pending:   len(p.pending),
		Usage:     p.usage,
	}
}

// Usage returns the totals of the latest run.
func (p *Processor) Usage() types.UsageTotals {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.usage
}
