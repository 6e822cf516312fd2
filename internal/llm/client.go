package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/carelink-ai/carelink/internal/config"
	apperrors "github.com/carelink-ai/carelink/internal/errors"
)

// Client provides access to the Gemini generateContent API. One client holds
// one configured model with a fixed generation config.
type Client struct {
	cfg     config.GeminiConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
}

// NewClient creates a new Gemini client
func NewClient(cfg config.GeminiConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		rps := float64(cfg.RequestsPerMinute) / 60.0
		limiter = rate.NewLimiter(rate.Limit(rps), cfg.RequestsPerMinute)
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "gemini",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		limiter: limiter,
		breaker: breaker,
	}
}

// GenerateRequest represents a generateContent API request
type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content represents a single turn of model input
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part represents a content fragment
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig holds sampling parameters
type GenerationConfig struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
}

// GenerateResponse represents a generateContent API response
type GenerateResponse struct {
	Candidates []struct {
		Content      Content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// GenerateContent sends a single prompt and returns the model's text
// response. Calls pass through the rate limiter and circuit breaker; an
// open breaker surfaces as ErrModelUnavailable.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", apperrors.Wrap(err, apperrors.ErrRateLimited.Code, apperrors.ErrRateLimited.Message)
		}
	}

	text, err := c.breaker.Execute(func() (string, error) {
		return c.generate(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", apperrors.Wrap(err, apperrors.ErrModelUnavailable.Code, apperrors.ErrModelUnavailable.Message)
		}
		return "", err
	}

	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	req := GenerateRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: prompt}}},
		},
		GenerationConfig: &GenerationConfig{
			Temperature: c.cfg.Temperature,
			TopP:        c.cfg.TopP,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrModelUnavailable.Code, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", apperrors.Wrap(
			fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes)),
			apperrors.ErrModelUnavailable.Code, apperrors.ErrModelUnavailable.Message)
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.ErrModelEmpty
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.cfg.Model
}
