package utils

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter counts tokens for prompt-length guards. Encoding lookup is
// model-specific; unknown models fall back to the gpt-4o encoding, which is
// close enough for budget enforcement.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter creates a token counter for the given model.
func NewTokenCounter(model string, logger Logger) (*TokenCounter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Warn("failed to get encoding for model, defaulting to gpt-4o", "model", model, "error", err)
		encoding, err = tiktoken.EncodingForModel("gpt-4o")
		if err != nil {
			return nil, fmt.Errorf("failed to get default encoding: %w", err)
		}
	}

	return &TokenCounter{encoding: encoding}, nil
}

// Count returns the number of tokens in text.
func (tc *TokenCounter) Count(text string) int {
	return len(tc.encoding.Encode(text, nil, nil))
}
