// Package openai provides a provider for OpenAI-compatible chat completion
// APIs. The default endpoint is the Gemini API's OpenAI-compatible surface.
//
// Example usage:
//
//	provider, err := openai.NewProvider(os.Getenv("GEMINI_API_KEY"))
//	if err != nil {
//	    panic(err)
//	}
//
//	summary, err := provider.Complete(ctx, "gemini-1.5-flash", "Summarize ...")
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/entrhq/promptlens/pkg/llm"
	"github.com/entrhq/promptlens/pkg/logging"
	"github.com/entrhq/promptlens/pkg/types"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultBaseURL is the Gemini API's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
)

var _ llm.Provider = (*Provider)(nil)

// Provider implements llm.Provider for OpenAI-compatible APIs.
type Provider struct {
	client     openai.Client
	httpClient *http.Client
	apiKey     string
	baseURL    string
	maxRetries int
	logger     *logging.Logger
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		if baseURL != "" {
			p.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// WithMaxRetries sets the client-level retry count. The default is 0: a failed
// generation becomes a placeholder instead of being retried.
func WithMaxRetries(n int) ProviderOption {
	return func(p *Provider) {
		p.maxRetries = n
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *logging.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates a provider authenticated with apiKey.
//
// An empty apiKey is a configuration error.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, types.NewConfigurationError("openai.NewProvider", "API key is required")
	}

	p := &Provider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		logger:  logging.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(p.apiKey),
		option.WithBaseURL(p.baseURL),
		option.WithMaxRetries(p.maxRetries),
	}
	if p.httpClient != nil {
		requestOpts = append(requestOpts, option.WithHTTPClient(p.httpClient))
	}
	p.client = openai.NewClient(requestOpts...)

	return p, nil
}

// Generate sends prompt and the image (as a base64 data URI) in a single user
// message and returns the text of the first choice.
func (p *Provider) Generate(ctx context.Context, model, prompt string, image types.ImageRecord) (string, error) {
	if len(image.Data) == 0 {
		return "", fmt.Errorf("image %s has no data", image.Src)
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: image.DataURI(),
		}),
	}

	p.logger.Debugf("generate: model=%s src=%s bytes=%d", model, image.Src, len(image.Data))
	return p.complete(ctx, model, openai.UserMessage(parts))
}

// Complete sends a text-only prompt and returns the text of the first choice.
func (p *Provider) Complete(ctx context.Context, model, prompt string) (string, error) {
	p.logger.Debugf("complete: model=%s prompt_chars=%d", model, len(prompt))
	return p.complete(ctx, model, openai.UserMessage(prompt))
}

func (p *Provider) complete(ctx context.Context, model string, message openai.ChatCompletionMessageParamUnion) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{message},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			p.logger.Warnf("model %s returned status %d", model, apiErr.StatusCode)
			return "", fmt.Errorf("API request failed with status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", model)
	}

	return resp.Choices[0].Message.Content, nil
}

// GetBaseURL returns the base URL being used.
func (p *Provider) GetBaseURL() string {
	return p.baseURL
}

// GetAPIKey returns the API key being used.
func (p *Provider) GetAPIKey() string {
	return p.apiKey
}
