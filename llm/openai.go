package llm

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"argus/core"
	"argus/metrics"
)

const defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider generates analysis text through the OpenAI chat completions
// API.
type OpenAIProvider struct {
	apiKey         string
	model          string
	temperature    float64
	maxTokens      int
	endpoint       string
	client         *http.Client
	circuitBreaker *core.CircuitBreaker
}

// OpenAIOption customizes an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithEndpoint overrides the API endpoint, used for tests and proxies.
func WithEndpoint(endpoint string) OpenAIOption {
	return func(p *OpenAIProvider) { p.endpoint = endpoint }
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(timeout time.Duration) OpenAIOption {
	return func(p *OpenAIProvider) { p.client.Timeout = timeout }
}

// NewOpenAIProvider creates a provider for the given model.
func NewOpenAIProvider(apiKey, model string, opts ...OpenAIOption) *OpenAIProvider {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	p := &OpenAIProvider{
		apiKey:      apiKey,
		model:       model,
		temperature: 0.3,
		maxTokens:   1000,
		endpoint:    defaultOpenAIEndpoint,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		circuitBreaker: core.NewCircuitBreaker(core.DefaultCircuitBreakerConfig()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Generate sends the prompt to the chat completions endpoint and returns the
// first choice's content.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := p.circuitBreaker.Allow(); err != nil {
		metrics.LLMRequests.WithLabelValues(p.Name(), "circuit_open").Inc()
		return "", fmt.Errorf("llm backend unavailable: %w", err)
	}

	reqBody := struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
		MaxTokens   int           `json:"max_tokens"`
	}{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		p.circuitBreaker.RecordFailure()
		metrics.LLMRequests.WithLabelValues(p.Name(), "error").Inc()
		return "", fmt.Errorf("failed to query LLM backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		p.circuitBreaker.RecordFailure()
		metrics.LLMRequests.WithLabelValues(p.Name(), "rate_limited").Inc()
		return "", fmt.Errorf("LLM backend rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		p.circuitBreaker.RecordFailure()
		metrics.LLMRequests.WithLabelValues(p.Name(), "error").Inc()
		return "", fmt.Errorf("LLM backend returned status %d", resp.StatusCode)
	}

	var completion struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		p.circuitBreaker.RecordFailure()
		metrics.LLMRequests.WithLabelValues(p.Name(), "error").Inc()
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		p.circuitBreaker.RecordFailure()
		metrics.LLMRequests.WithLabelValues(p.Name(), "error").Inc()
		return "", fmt.Errorf("LLM backend returned no choices")
	}

	p.circuitBreaker.RecordSuccess()
	metrics.LLMRequests.WithLabelValues(p.Name(), "success").Inc()
	return completion.Choices[0].Message.Content, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
