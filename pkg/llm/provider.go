// Package llm defines the generative-AI calls promptlens makes and the local
// token accounting applied to their responses.
//
// Example usage:
//
//	provider, err := openai.NewProvider(os.Getenv("GEMINI_API_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	text, err := provider.Generate(ctx, "gemini-1.5-flash",
//	    "Generate a text-to-image AI prompt that can recreate it accurately.", image)
package llm

import (
	"context"

	"github.com/entrhq/promptlens/pkg/types"
)

// Generator produces a text prompt describing one image.
//
// Implementations make exactly one request per call and do not retry;
// failures are returned to the caller, which decides how to recover.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, image types.ImageRecord) (string, error)
}

// Completer answers a plain text prompt. Used for tab summaries and
// suggestions.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Provider is a service that supports both call shapes.
type Provider interface {
	Generator
	Completer

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string
}
