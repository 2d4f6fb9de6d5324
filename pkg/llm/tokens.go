package llm

import (
	"fmt"
	"sync"
	"unicode/utf16"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates the token cost of a response text.
type TokenCounter interface {
	Count(text string) int
}

// CharEstimator approximates tokens as ceil(characters/4), counting
// characters as UTF-16 code units. The service does not report usage for
// every model, so this is the default accounting.
type CharEstimator struct{}

// Count returns ceil(units/4), where characters outside the Basic
// Multilingual Plane count as two units.
func (CharEstimator) Count(text string) int {
	units := 0
	for _, r := range text {
		units += utf16.RuneLen(r)
	}
	return (units + 3) / 4
}

// TiktokenCounter counts tokens with a BPE encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.Mutex
}

// DefaultEncoding is the encoding used by NewTiktokenCounter when none is given.
const DefaultEncoding = "cl100k_base"

// NewTiktokenCounter loads the named encoding. The first load may download
// the encoding's rank file.
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load token encoding %s: %w", encoding, err)
	}
	return &TiktokenCounter{encoding: enc}, nil
}

// Count returns the number of BPE tokens in text.
func (c *TiktokenCounter) Count(text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.encoding.Encode(text, nil, nil))
}

// NewTokenCounter returns the counter registered under name: "chars" (or
// empty) for CharEstimator, "tiktoken" for TiktokenCounter.
func NewTokenCounter(name string) (TokenCounter, error) {
	switch name {
	case "", "chars":
		return CharEstimator{}, nil
	case "tiktoken":
		return NewTiktokenCounter(DefaultEncoding)
	default:
		return nil, fmt.Errorf("unknown token counter %q", name)
	}
}
