package config

import (
	"fmt"
	"net/url"
	"sync"
)

const (
	// SectionIDLLM is the identifier for the LLM settings section
	SectionIDLLM = "llm"

	// DefaultBaseURL is the OpenAI-compatible endpoint of the Gemini API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	// DefaultSummaryModel is used for tab summaries and suggestions.
	DefaultSummaryModel = "gemini-1.5-flash"

	// Token counter names accepted in token_counter.
	TokenCounterChars    = "chars"
	TokenCounterTiktoken = "tiktoken"
)

// LLMSection manages provider settings that are not exposed in the panel.
type LLMSection struct {
	BaseURL      string
	SummaryModel string
	TokenCounter string
	mu           sync.RWMutex
}

// NewLLMSection creates a new LLM section with default settings.
func NewLLMSection() *LLMSection {
	return &LLMSection{
		BaseURL:      DefaultBaseURL,
		SummaryModel: DefaultSummaryModel,
		TokenCounter: TokenCounterChars,
	}
}

// ID returns the section identifier.
func (s *LLMSection) ID() string {
	return SectionIDLLM
}

// Title returns the section title.
func (s *LLMSection) Title() string {
	return "LLM Settings"
}

// Description returns the section description.
func (s *LLMSection) Description() string {
	return "Provider endpoint, the model used for tab summaries and the token counting strategy."
}

// Data returns the current configuration data.
func (s *LLMSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"base_url":      s.BaseURL,
		"summary_model": s.SummaryModel,
		"token_counter": s.TokenCounter,
	}
}

// SetData updates the configuration from the provided data.
func (s *LLMSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if baseURL, ok := data["base_url"].(string); ok {
		s.BaseURL = baseURL
	}

	if summaryModel, ok := data["summary_model"].(string); ok {
		s.SummaryModel = summaryModel
	}

	if counter, ok := data["token_counter"].(string); ok {
		s.TokenCounter = counter
	}

	return nil
}

// Validate validates the current configuration.
func (s *LLMSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.BaseURL != "" {
		u, err := url.Parse(s.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base_url %q is not an absolute URL", s.BaseURL)
		}
	}

	switch s.TokenCounter {
	case "", TokenCounterChars, TokenCounterTiktoken:
		return nil
	default:
		return fmt.Errorf("token_counter must be %q or %q, got %q", TokenCounterChars, TokenCounterTiktoken, s.TokenCounter)
	}
}

// Reset resets the section to default configuration.
func (s *LLMSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BaseURL = DefaultBaseURL
	s.SummaryModel = DefaultSummaryModel
	s.TokenCounter = TokenCounterChars
}

// GetBaseURL returns the configured base URL.
func (s *LLMSection) GetBaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BaseURL
}

// SetBaseURL sets the base URL.
func (s *LLMSection) SetBaseURL(baseURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BaseURL = baseURL
}

// GetSummaryModel returns the configured summary model name.
func (s *LLMSection) GetSummaryModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SummaryModel
}

// SetSummaryModel sets the summary model name.
func (s *LLMSection) SetSummaryModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SummaryModel = model
}

// GetTokenCounter returns the token counter name, defaulting to chars.
func (s *LLMSection) GetTokenCounter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.TokenCounter == "" {
		return TokenCounterChars
	}
	return s.TokenCounter
}
