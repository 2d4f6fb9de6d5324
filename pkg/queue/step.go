package queue

import (
	"context"
	"time"

	"github.com/entrhq/promptlens/pkg/llm"
	"github.com/entrhq/promptlens/pkg/types"
)

// run is the immutable part of one Start call, owned by its drain goroutine.
type run struct {
	id         string
	generation uint64
	total      int
	cfg        RunConfig
	generator  llm.Generator
	stopCh     chan struct{}
	done       chan struct{}
}

// stepResult tells the drain loop what to do next.
type stepResult struct {
	done    bool
	stopped bool
	delay   time.Duration
}

// outcome holds the notifications of one processed image.
type outcome struct {
	progress float64
	result   types.PromptResult
	usage    types.UsageTotals
}

func (p *Processor) drain(ctx context.Context, r run) {
	defer close(r.done)

	sink := p.sink
	if scoped, ok := p.sink.(RunScoped); ok {
		sink = scoped.ForRun(r.id)
	}

	if observer, ok := p.sink.(RunObserver); ok {
		observer.OnRunStart(r.id, r.total)
	}

	stopped := false
	defer func() {
		if stopped {
			if observer, ok := p.sink.(RunObserver); ok {
				observer.OnRunStopped(r.id)
			}
		}
	}()

	for {
		res := p.step(ctx, r, sink)
		if res.done {
			stopped = res.stopped
			return
		}

		select {
		case <-p.clock.After(res.delay):
		case <-r.stopCh:
			stopped = true
			return
		case <-ctx.Done():
			p.stopRun(r.generation)
			stopped = true
			return
		}
	}
}

// step processes the head of the queue, or completes the run when the queue
// is empty. Notifications are sent after the state lock is released.
func (p *Processor) step(ctx context.Context, r run, sink Sink) stepResult {
	p.mu.Lock()
	if !p.current(r.generation) {
		p.mu.Unlock()
		return stepResult{done: true, stopped: true}
	}

	if len(p.pending) == 0 {
		p.running = false
		usage := p.usage
		p.mu.Unlock()

		p.logger.Infof("run %s completed: %d images, %d tokens, cost %.8f", r.id, r.total, usage.Tokens, usage.EstimatedCost)
		sink.OnCompleted()
		return stepResult{done: true}
	}

	// The head stays queued until its response is accounted
	image := p.pending[0]
	p.mu.Unlock()

	text, err := r.generator.Generate(ctx, r.cfg.Model, r.cfg.PromptTemplate, image)

	if ctx.Err() != nil {
		p.stopRun(r.generation)
	}

	p.mu.Lock()
	if !p.current(r.generation) {
		p.mu.Unlock()
		p.logger.Debugf("run %s: discarding late response for %s", r.id, image.Src)
		return stepResult{done: true, stopped: true}
	}
	out := p.account(r, image, text, err)
	p.mu.Unlock()

	sink.OnProgress(out.progress)
	sink.OnResult(out.result)
	sink.OnUsageUpdate(out.usage)

	return stepResult{delay: p.pacing}
}

// account pops the head and folds the response into the totals. Callers hold mu.
func (p *Processor) account(r run, image types.ImageRecord, text string, err error) outcome {
	p.pending = p.pending[1:]
	p.processed++

	result := types.PromptResult{
		Source: image,
		Model:  r.cfg.Model,
	}

	if err != nil {
		p.logger.Warnf("run %s: %v", r.id, types.NewGenerationError("queue.step", r.cfg.Model, err))
		result.PromptText = PlaceholderText(r.cfg.Model)
		result.Placeholder = true
	} else {
		tokens := p.counter.Count(text)
		result.PromptText = text
		result.TokenCount = tokens
		p.usage = p.usage.Add(tokens, p.pricing.OutputCost(r.cfg.Model, tokens))
	}

	return outcome{
		progress: float64(p.processed) / float64(r.total),
		result:   result,
		usage:    p.usage,
	}
}

// current reports whether generation is the live run. Callers hold mu.
func (p *Processor) current(generation uint64) bool {
	return p.running && p.generation == generation
}

// stopRun stops the run only if it is still the live one.
func (p *Processor) stopRun(generation uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current(generation) {
		p.stopLocked()
	}
}
