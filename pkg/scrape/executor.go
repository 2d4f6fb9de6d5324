// Package scrape runs a whole page scrape: collect the page's images, queue
// them for prompt generation, and report the outcome.
package scrape

import (
	"context"
	"fmt"
	"io"

	"github.com/entrhq/promptlens/pkg/collector"
	"github.com/entrhq/promptlens/pkg/logging"
	"github.com/entrhq/promptlens/pkg/queue"
	"github.com/entrhq/promptlens/pkg/report"
	"github.com/entrhq/promptlens/pkg/types"
)

// EventObserver receives every queue event of the run, in order.
type EventObserver func(ev *types.QueueEvent)

// Option configures an Executor.
type Option func(*Executor)

// WithConsole sets the console used for progress output.
func WithConsole(console *report.Console) Option {
	return func(e *Executor) {
		e.console = console
	}
}

// WithCollector replaces the default collector.
func WithCollector(c *collector.Collector) Option {
	return func(e *Executor) {
		e.collector = c
	}
}

// WithQueueOptions passes options to the processor.
func WithQueueOptions(opts ...queue.Option) Option {
	return func(e *Executor) {
		e.queueOpts = append(e.queueOpts, opts...)
	}
}

// WithObserver registers an event observer, such as a progress bar.
func WithObserver(observer EventObserver) Option {
	return func(e *Executor) {
		e.observers = append(e.observers, observer)
	}
}

// WithLogger sets the file logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// Executor runs one scrape.
type Executor struct {
	config    *Config
	runConfig queue.RunConfig
	source    collector.Source
	factory   queue.GeneratorFactory

	collector *collector.Collector
	queueOpts []queue.Option
	observers []EventObserver
	console   *report.Console
	logger    *logging.Logger

	processor *queue.Processor
	sink      *queue.ChannelSink
	recorder  *report.Recorder
}

// NewExecutor creates an executor. The run configuration is validated here
// so a missing API key fails before the page is touched.
func NewExecutor(config *Config, runConfig queue.RunConfig, source collector.Source, factory queue.GeneratorFactory, opts ...Option) (*Executor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := runConfig.Validate(); err != nil {
		return nil, err
	}

	e := &Executor{
		config:    config,
		runConfig: runConfig,
		source:    source,
		factory:   factory,
		console:   report.NewConsole(io.Discard, report.VerbosityQuiet),
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.collector == nil {
		e.collector = collector.New(
			collector.WithConcurrency(config.Concurrency),
			collector.WithLogger(e.logger.With("collector")),
		)
	}

	e.sink = queue.NewChannelSink(16)
	queueOpts := append([]queue.Option{
		queue.WithPacing(config.Pacing),
		queue.WithLogger(e.logger.With("queue")),
	}, e.queueOpts...)
	e.processor = queue.NewProcessor(factory, e.sink, queueOpts...)
	e.recorder = report.NewRecorder(config.URL, runConfig.Model)

	return e, nil
}

// Run collects the page's images, drains them through the prompt queue and
// writes artifacts. Cancelling ctx stops the run; the summary of what was
// processed is still returned.
func (e *Executor) Run(ctx context.Context) (*report.RunSummary, error) {
	e.console.Section("Collecting images")
	e.console.Verbosef("page: %s", e.config.URL)

	channel := collector.NewChannel(e.collector, e.source)
	channel.SetDelay(e.config.ScrapeDelay)

	images, err := channel.ScrapeImages(ctx)
	if err != nil {
		e.logger.Errorf("scrape of %s failed: %v", e.config.URL, err)
		return e.fail(err)
	}
	e.console.Successf("Collected %d images", len(images))
	e.logger.Infof("collected %d images from %s", len(images), e.config.URL)

	e.console.Section("Generating prompts")
	if err := e.processor.Start(ctx, images, e.runConfig); err != nil {
		return e.fail(err)
	}

	index := 0
	for ev := range e.sink.Events() {
		e.recorder.Record(ev)
		for _, observe := range e.observers {
			observe(ev)
		}
		if ev.Type == types.EventTypeResult && ev.Result != nil {
			index++
			e.console.Result(index, *ev.Result)
		}
		if ev.IsTerminal() {
			break
		}
	}
	<-e.processor.Done()

	summary := e.recorder.Summary()
	if err := e.writeArtifacts(summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// Stop cancels the run in progress.
func (e *Executor) Stop() {
	e.processor.Stop()
}

// Processor returns the executor's prompt queue.
func (e *Executor) Processor() *queue.Processor {
	return e.processor
}

func (e *Executor) fail(err error) (*report.RunSummary, error) {
	e.recorder.Fail(err)
	summary := e.recorder.Summary()
	if writeErr := e.writeArtifacts(summary); writeErr != nil {
		e.logger.Warnf("could not write artifacts: %v", writeErr)
	}
	return summary, err
}

func (e *Executor) writeArtifacts(summary *report.RunSummary) error {
	if !e.config.Artifacts.Enabled {
		return nil
	}
	writer := report.NewArtifactWriter(e.config.Artifacts.OutputDir)
	if err := writer.WriteAll(summary); err != nil {
		return err
	}
	e.console.Verbosef("artifacts written to %s", e.config.Artifacts.OutputDir)
	return nil
}
