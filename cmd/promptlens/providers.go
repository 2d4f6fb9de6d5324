package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/entrhq/promptlens/pkg/browser"
	"github.com/entrhq/promptlens/pkg/collector"
	"github.com/entrhq/promptlens/pkg/config"
	"github.com/entrhq/promptlens/pkg/llm"
	"github.com/entrhq/promptlens/pkg/llm/openai"
	"github.com/entrhq/promptlens/pkg/types"
)

const pageTimeout = 30 * time.Second

// pageSource is what the commands need from a page: its images and its text.
type pageSource interface {
	Candidates(ctx context.Context) ([]types.Candidate, error)
	PageText(ctx context.Context, maxLength int) (string, error)
}

var (
	_ pageSource = (*collector.HTTPPageSource)(nil)
	_ pageSource = (*browser.PageSource)(nil)
)

// resolve loads saved settings and merges them with flags and the environment.
func (a *app) resolve(overrides config.Overrides) (config.Resolved, error) {
	if err := config.Initialize(a.storePath); err != nil {
		return config.Resolved{}, fmt.Errorf("failed to initialize configuration: %w", err)
	}
	return config.ResolveGlobal(overrides), nil
}

func (a *app) newProvider(apiKey, baseURL string) (*openai.Provider, error) {
	return openai.NewProvider(apiKey,
		openai.WithBaseURL(baseURL),
		openai.WithLogger(a.logger.With("provider")),
	)
}

func (a *app) generatorFactory(baseURL string) func(apiKey string) (llm.Generator, error) {
	return func(apiKey string) (llm.Generator, error) {
		provider, err := a.newProvider(apiKey, baseURL)
		if err != nil {
			return nil, err
		}
		return provider, nil
	}
}

func (a *app) completerFactory(baseURL string) func(apiKey string) (llm.Completer, error) {
	return func(apiKey string) (llm.Completer, error) {
		provider, err := a.newProvider(apiKey, baseURL)
		if err != nil {
			return nil, err
		}
		return provider, nil
	}
}

// openPage returns a static or a rendered source for pageURL. The returned
// cleanup function must be called when the source is no longer needed.
func (a *app) openPage(pageURL string, render bool) (pageSource, func(), error) {
	if !render {
		client := &http.Client{Timeout: pageTimeout}
		return collector.NewHTTPPageSource(pageURL, client), func() {}, nil
	}

	manager := browser.NewSessionManager(a.logger.With("browser"))
	if err := manager.Initialize(); err != nil {
		return nil, nil, fmt.Errorf("failed to start browser: %w", err)
	}

	session, err := manager.StartSession("page", browser.SessionOptions{Headless: true})
	if err != nil {
		_ = manager.Shutdown()
		return nil, nil, fmt.Errorf("failed to open browser session: %w", err)
	}

	cleanup := func() {
		if err := manager.Shutdown(); err != nil {
			a.logger.Warnf("browser shutdown: %v", err)
		}
	}
	return browser.NewPageSource(session, pageURL, browser.NavigateOptions{}), cleanup, nil
}
