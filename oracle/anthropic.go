package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/invopop/jsonschema"
	"golang.org/x/time/rate"

	"github.com/teilomillet/dualprompt/config"
	"github.com/teilomillet/dualprompt/utils"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient implements Client against the Anthropic Messages API.
// Calls are rate limited and retried with a fixed delay; a call either
// returns a result within the HTTP client's timeout or an error.
type AnthropicClient struct {
	apiKey       string
	endpoint     string
	client       *http.Client
	limiter      *rate.Limiter
	counter      *utils.TokenCounter
	logger       utils.Logger
	maxTokens    int
	promptBudget int
	maxRetries   int
	retryDelay   time.Duration
}

// NewAnthropicClient builds a client from the run configuration. If the
// token encoding cannot be initialized the prompt-length guard is disabled
// rather than failing the whole run.
func NewAnthropicClient(cfg *config.Config, logger utils.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, NewOracleError(ErrorTypeRequest, "missing API key", nil)
	}

	counter, err := utils.NewTokenCounter(cfg.GenerationModel, logger)
	if err != nil {
		logger.Warn("token counting unavailable, prompt length guard disabled", "error", err)
		counter = nil
	}

	return &AnthropicClient{
		apiKey:       cfg.APIKey,
		endpoint:     cfg.Endpoint,
		client:       &http.Client{Timeout: cfg.Timeout},
		limiter:      rate.NewLimiter(rate.Every(cfg.RateLimitInterval), 1),
		counter:      counter,
		logger:       logger,
		maxTokens:    cfg.MaxResponseTokens,
		promptBudget: cfg.MaxPromptTokens,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
	}, nil
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText implements Client.
func (c *AnthropicClient) GenerateText(ctx context.Context, model, instructions, input string) (string, error) {
	if instructions == "" {
		instructions = "You are a helpful assistant."
	}

	if c.counter != nil {
		if tokens := c.counter.Count(instructions) + c.counter.Count(input); tokens > c.promptBudget {
			return "", NewOracleError(ErrorTypeRequest,
				fmt.Sprintf("prompt of %d tokens exceeds budget of %d", tokens, c.promptBudget), nil)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", NewOracleError(ErrorTypeRequest, "rate limiter wait failed", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		c.logger.Debug("generating text", "model", model, "attempt", attempt+1)

		text, err := c.attemptGenerate(ctx, model, instructions, input)
		if err == nil {
			return text, nil
		}
		lastErr = err
		c.logger.Warn("generation attempt failed", "model", model, "attempt", attempt+1, "error", err)

		if attempt < c.maxRetries {
			if err := c.wait(ctx); err != nil {
				return "", NewOracleError(ErrorTypeRequest, "retry wait interrupted", err)
			}
		}
	}

	return "", NewOracleError(ErrorTypeAPI,
		fmt.Sprintf("failed to generate after %d attempts", c.maxRetries+1), lastErr)
}

// GenerateStructured implements Client. The JSON schema of out is reflected
// and appended to the instructions so the oracle knows the exact shape to
// produce; the response is then fence-stripped, decoded, and validated.
func (c *AnthropicClient) GenerateStructured(ctx context.Context, model, instructions, input string, out any) error {
	schema, err := json.Marshal(jsonschema.Reflect(out))
	if err != nil {
		return NewOracleError(ErrorTypeRequest, "failed to reflect response schema", err)
	}

	instructions = fmt.Sprintf(
		"%s\n\nRespond with a single valid JSON value matching this JSON Schema. Do not use markdown formatting, code blocks, or backticks.\n%s",
		instructions, schema)
	input += "\n\nPlease respond with valid JSON only."

	text, err := c.GenerateText(ctx, model, instructions, input)
	if err != nil {
		return err
	}

	return decodeStructured(text, out)
}

func (c *AnthropicClient) attemptGenerate(ctx context.Context, model, instructions, input string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     model,
		MaxTokens: c.maxTokens,
		System:    instructions,
		Messages:  []anthropicMessage{{Role: "user", Content: input}},
	})
	if err != nil {
		return "", NewOracleError(ErrorTypeRequest, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", NewOracleError(ErrorTypeRequest, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", NewOracleError(ErrorTypeAPI, "request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewOracleError(ErrorTypeResponse, "failed to read response body", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", NewOracleError(ErrorTypeResponse, "failed to decode response", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("API returned status %d", resp.StatusCode)
		if parsed.Error != nil {
			msg = fmt.Sprintf("%s: %s (%s)", msg, parsed.Error.Message, parsed.Error.Type)
		}
		return "", NewOracleError(ErrorTypeAPI, msg, nil)
	}

	if len(parsed.Content) == 0 || parsed.Content[0].Text == "" {
		return "", NewOracleError(ErrorTypeResponse, "empty response content", nil)
	}

	return parsed.Content[0].Text, nil
}

func (c *AnthropicClient) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.retryDelay):
		return nil
	}
}
