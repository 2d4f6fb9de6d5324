package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/schollz/progressbar/v3"

	"github.com/entrhq/promptlens/pkg/config"
	"github.com/entrhq/promptlens/pkg/llm"
	"github.com/entrhq/promptlens/pkg/queue"
	"github.com/entrhq/promptlens/pkg/report"
	"github.com/entrhq/promptlens/pkg/scrape"
	"github.com/entrhq/promptlens/pkg/types"
)

// scrapeFlags holds the scrape command line. Flags that were set override
// the run file.
type scrapeFlags struct {
	URL        string
	Render     bool
	Model      string
	Prompt     string
	APIKey     string
	BaseURL    string
	OutputDir  string
	ConfigFile string
	Copy       bool
	Verbosity  string
	set        map[string]bool
}

func parseScrapeFlags(args []string) (*scrapeFlags, error) {
	f := &scrapeFlags{set: make(map[string]bool)}

	fs := flag.NewFlagSet("scrape", flag.ContinueOnError)
	fs.StringVar(&f.URL, "url", "", "Page to collect images from")
	fs.BoolVar(&f.Render, "render", false, "Render the page in a headless browser")
	fs.StringVar(&f.Model, "model", "", "Model to use (default from settings)")
	fs.StringVar(&f.Prompt, "prompt", "", "Prompt sent with every image (default from settings)")
	fs.StringVar(&f.APIKey, "api-key", "", "API key (or set PROMPTLENS_API_KEY)")
	fs.StringVar(&f.BaseURL, "base-url", "", "OpenAI-compatible API base URL")
	fs.StringVar(&f.OutputDir, "out", "", "Artifact directory (default .promptlens/runs)")
	fs.StringVar(&f.ConfigFile, "config", "", "Run file (YAML)")
	fs.BoolVar(&f.Copy, "copy", false, "Copy the generated prompts to the clipboard")
	fs.StringVar(&f.Verbosity, "verbosity", "", "Console output: quiet, normal, verbose or debug")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// runConfig loads the run file, if any, and applies the flags on top.
func (f *scrapeFlags) runConfig() (*scrape.Config, error) {
	cfg := scrape.DefaultConfig()
	if f.ConfigFile != "" {
		loaded, err := scrape.LoadConfig(f.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.set["url"] {
		cfg.URL = f.URL
	}
	if f.set["render"] {
		cfg.Render = f.Render
	}
	if f.set["model"] {
		cfg.Model = f.Model
	}
	if f.set["prompt"] {
		cfg.Prompt = f.Prompt
	}
	if f.set["out"] {
		cfg.Artifacts.Enabled = f.OutputDir != ""
		cfg.Artifacts.OutputDir = f.OutputDir
	}
	if f.set["copy"] {
		cfg.Copy = f.Copy
	}
	if f.set["verbosity"] {
		cfg.Logging.Verbosity = f.Verbosity
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (a *app) runScrape(ctx context.Context, args []string) error {
	flags, err := parseScrapeFlags(args)
	if err != nil {
		return err
	}
	cfg, err := flags.runConfig()
	if err != nil {
		return err
	}

	resolved, err := a.resolve(config.Overrides{
		APIKey:         flags.APIKey,
		Model:          cfg.Model,
		BaseURL:        flags.BaseURL,
		PromptTemplate: cfg.Prompt,
	})
	if err != nil {
		return err
	}

	counter, err := llm.NewTokenCounter(resolved.TokenCounter)
	if err != nil {
		return err
	}

	console := report.NewConsole(os.Stdout, report.ParseVerbosity(cfg.Logging.Verbosity))
	console.Header("promptlens scrape")
	console.Infof("Page: %s", cfg.URL)
	console.Infof("Model: %s", resolved.Model)
	console.Debugf("Base URL: %s", resolved.BaseURL)

	source, cleanup, err := a.openPage(cfg.URL, cfg.Render)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := []scrape.Option{
		scrape.WithConsole(console),
		scrape.WithLogger(a.logger),
		scrape.WithQueueOptions(queue.WithTokenCounter(counter)),
	}
	bar := &progressObserver{enabled: console.Level() >= report.VerbosityNormal}
	opts = append(opts, scrape.WithObserver(bar.observe))

	runConfig := queue.RunConfig{
		APIKey:         resolved.APIKey,
		Model:          resolved.Model,
		PromptTemplate: resolved.PromptTemplate,
	}
	executor, err := scrape.NewExecutor(cfg, runConfig, source, a.generatorFactory(resolved.BaseURL), opts...)
	if err != nil {
		return err
	}

	runCtx, stopWatching := context.WithCancel(context.Background())
	defer stopWatching()
	go func() {
		select {
		case <-ctx.Done():
			executor.Stop()
		case <-runCtx.Done():
		}
	}()

	summary, err := executor.Run(ctx)
	bar.finish()
	console.Summary(summary)
	if err != nil {
		return err
	}

	if cfg.Copy {
		copyPrompts(console, summary)
	}
	return nil
}

func copyPrompts(console *report.Console, summary *report.RunSummary) {
	prompts := summary.Prompts()
	if len(prompts) == 0 {
		console.Warningf("no prompts to copy")
		return
	}
	if err := clipboard.WriteAll(strings.Join(prompts, "\n\n")); err != nil {
		console.Warningf("could not copy prompts: %v", err)
		return
	}
	console.Successf("Copied %d prompts to the clipboard", len(prompts))
}

// progressObserver drives a terminal progress bar from queue events.
type progressObserver struct {
	enabled bool
	bar     *progressbar.ProgressBar
	total   int
}

func (p *progressObserver) observe(ev *types.QueueEvent) {
	if !p.enabled {
		return
	}
	switch ev.Type {
	case types.EventTypeRunStart:
		p.total = ev.Total
		if p.total > 0 {
			p.bar = progressbar.Default(int64(p.total), "generating prompts")
		}
	case types.EventTypeProgress:
		if p.bar != nil {
			_ = p.bar.Set(int(ev.Progress*float64(p.total) + 0.5))
		}
	}
}

func (p *progressObserver) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
