package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/entrhq/promptlens/pkg/config"
	"github.com/entrhq/promptlens/pkg/report"
	"github.com/entrhq/promptlens/pkg/tabs"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func (a *app) runTabs(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "summarize":
			return a.runTabsSummarize(ctx, args[1:])
		case "suggest":
			return a.runTabsSuggest(ctx, args[1:])
		}
	}

	var (
		file     string
		query    string
		excludes stringList
	)
	fs := flag.NewFlagSet("tabs", flag.ContinueOnError)
	fs.StringVar(&file, "file", "", "JSON file with the open tabs ([{id,title,url,favIconUrl}])")
	fs.StringVar(&query, "search", "", "Only show tabs whose title contains this text")
	fs.Var(&excludes, "exclude", "Host pattern to leave out, e.g. '*.internal' (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "tabs: -file is required")
		fs.PrintDefaults()
		return errUsage
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open tabs file: %w", err)
	}
	defer f.Close()

	list, err := tabs.LoadTabs(f)
	if err != nil {
		return err
	}

	grouper, err := tabs.NewGrouper(excludes...)
	if err != nil {
		return err
	}

	groups := grouper.Group(tabs.Filter(list, query))
	printGroups(report.NewConsole(os.Stdout, report.VerbosityNormal), groups, query)
	a.logger.Infof("grouped %d tabs into %d domains", len(list), len(groups))
	return nil
}

func printGroups(console *report.Console, groups []tabs.Group, query string) {
	if len(groups) == 0 {
		if query != "" {
			console.Infof("No tabs match %q", query)
		} else {
			console.Infof("No tabs")
		}
		return
	}

	for _, group := range groups {
		console.Section(fmt.Sprintf("%s (%d)", group.Domain, len(group.Tabs)))
		for _, tab := range group.Tabs {
			console.Infof("  %s", tab.DisplayTitle())
			console.Verbosef("  %s", tab.URL)
		}
	}
}

func (a *app) runTabsSummarize(ctx context.Context, args []string) error {
	var (
		pageURL string
		render  bool
		apiKey  string
		baseURL string
	)
	fs := flag.NewFlagSet("tabs summarize", flag.ContinueOnError)
	fs.StringVar(&pageURL, "url", "", "Page to summarize")
	fs.BoolVar(&render, "render", false, "Render the page in a headless browser")
	fs.StringVar(&apiKey, "api-key", "", "API key (or set PROMPTLENS_API_KEY)")
	fs.StringVar(&baseURL, "base-url", "", "OpenAI-compatible API base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if pageURL == "" {
		fmt.Fprintln(os.Stderr, "tabs summarize: -url is required")
		fs.PrintDefaults()
		return errUsage
	}

	resolved, err := a.resolve(config.Overrides{APIKey: apiKey, BaseURL: baseURL})
	if err != nil {
		return err
	}

	assistant, err := tabs.NewAssistant(resolved.APIKey, resolved.SummaryModel,
		a.completerFactory(resolved.BaseURL), a.logger.With("tabs"))
	if err != nil {
		return err
	}

	source, cleanup, err := a.openPage(pageURL, render)
	if err != nil {
		return err
	}
	defer cleanup()

	summary, err := assistant.Summarize(ctx, source)
	if err != nil {
		return err
	}
	fmt.Println(summary)
	return nil
}

func (a *app) runTabsSuggest(ctx context.Context, args []string) error {
	var (
		query   string
		apiKey  string
		baseURL string
	)
	fs := flag.NewFlagSet("tabs suggest", flag.ContinueOnError)
	fs.StringVar(&query, "query", "", "Search query")
	fs.StringVar(&apiKey, "api-key", "", "API key (or set PROMPTLENS_API_KEY)")
	fs.StringVar(&baseURL, "base-url", "", "OpenAI-compatible API base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolved, err := a.resolve(config.Overrides{APIKey: apiKey, BaseURL: baseURL})
	if err != nil {
		return err
	}

	assistant, err := tabs.NewAssistant(resolved.APIKey, resolved.SummaryModel,
		a.completerFactory(resolved.BaseURL), a.logger.With("tabs"))
	if err != nil {
		return err
	}

	suggestions, err := assistant.Suggest(ctx, query)
	if err != nil {
		return err
	}

	console := report.NewConsole(os.Stdout, report.VerbosityNormal)
	if len(suggestions) == 0 {
		console.Infof("No suggestions")
		return nil
	}
	console.Section("Suggested on the web")
	for _, s := range suggestions {
		console.Infof("  %s (%s)", s.Title, s.Domain())
		console.Infof("    %s", s.URL)
	}
	return nil
}
