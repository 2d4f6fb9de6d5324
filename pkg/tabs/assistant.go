package tabs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/entrhq/promptlens/pkg/llm"
	"github.com/entrhq/promptlens/pkg/logging"
	"github.com/entrhq/promptlens/pkg/types"
)

const (
	// SummaryInputLimit is the number of page characters sent for a summary.
	SummaryInputLimit = 4000

	// SuggestionCount is how many web suggestions are requested.
	SuggestionCount = 3
)

// TextSource yields the readable text of one page.
type TextSource interface {
	PageText(ctx context.Context, maxLength int) (string, error)
}

// CompleterFactory builds a text completer from an API key.
type CompleterFactory func(apiKey string) (llm.Completer, error)

// Suggestion is one suggested website.
type Suggestion struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Domain returns the suggestion's host name.
func (s Suggestion) Domain() string {
	host, _ := Hostname(s.URL)
	return host
}

// Assistant answers summary and suggestion requests with a text model.
type Assistant struct {
	completer llm.Completer
	model     string
	logger    *logging.Logger
}

// NewAssistant creates an assistant. A missing API key is a configuration
// error.
func NewAssistant(apiKey, model string, factory CompleterFactory, logger *logging.Logger) (*Assistant, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, types.NewConfigurationError("tabs.NewAssistant", "API key is not set; add it in settings")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	completer, err := factory(apiKey)
	if err != nil {
		return nil, types.WrapError(types.KindConfiguration, "tabs.NewAssistant", "could not create completer", err)
	}

	return &Assistant{completer: completer, model: model, logger: logger}, nil
}

// Summarize returns a one-sentence summary of the page. A page that cannot be
// read is a channel error.
func (a *Assistant) Summarize(ctx context.Context, source TextSource) (string, error) {
	text, err := source.PageText(ctx, SummaryInputLimit)
	if err != nil {
		return "", types.NewChannelError("tabs.Summarize", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", types.NewChannelError("tabs.Summarize", errors.New("page has no readable text"))
	}

	prompt := "Summarize the following content in one concise sentence: " + text
	summary, err := a.completer.Complete(ctx, a.model, prompt)
	if err != nil {
		return "", types.NewGenerationError("tabs.Summarize", a.model, err)
	}

	a.logger.Debugf("summarized %d characters with %s", len([]rune(text)), a.model)
	return strings.TrimSpace(summary), nil
}

// Suggest asks the model for the most relevant websites for query. Entries
// without a title or with an invalid http(s) URL are dropped. An empty query
// returns no suggestions.
func (a *Assistant) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf(
		"Based on the search query \"%s\", suggest the top %d most relevant websites. "+
			"For each, provide a title and a valid URL. Format the output as a JSON array of objects, "+
			"where each object has \"title\" and \"url\" keys.",
		query, SuggestionCount)

	response, err := a.completer.Complete(ctx, a.model, prompt)
	if err != nil {
		return nil, types.NewGenerationError("tabs.Suggest", a.model, err)
	}

	suggestions, err := ParseSuggestions(response)
	if err != nil {
		return nil, types.NewGenerationError("tabs.Suggest", a.model, err)
	}
	return suggestions, nil
}

// ParseSuggestions decodes a model response holding a JSON array of
// {title, url} objects, optionally inside a ```json fence.
func ParseSuggestions(response string) ([]Suggestion, error) {
	cleaned := strings.NewReplacer("```json", "", "```", "").Replace(response)
	cleaned = strings.TrimSpace(cleaned)

	var raw []Suggestion
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("response is not a JSON array of suggestions: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(raw))
	for _, s := range raw {
		if strings.TrimSpace(s.Title) == "" || !validWebURL(s.URL) {
			continue
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}

func validWebURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
