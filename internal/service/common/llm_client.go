package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
)

// Client is the narrow surface of the LLM service consumed by the
// translation and review stages.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// httpClient implements Client against an Anthropic-style messages endpoint.
type httpClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewHTTPClient creates an LLM client for the given endpoint and model.
func NewHTTPClient(baseURL, apiKey, model string) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends the prompt as a single user message and returns the model's
// text output. Errors are classified so callers can tell fatal credential
// problems from retryable service failures.
func (c *httpClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", apperrors.New(apperrors.CodeAuth, "API key is not configured")
	}

	payload, err := json.Marshal(messageRequest{
		Model:     c.model,
		MaxTokens: 4096,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", apperrors.Wrap(err, apperrors.CodeUnavailable, "request timed out")
		}
		return "", apperrors.Wrap(err, apperrors.CodeUnavailable, "request failed")
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return "", err
	}

	var mr messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeParse, "failed to decode response")
	}
	if len(mr.Content) == 0 {
		return "", apperrors.New(apperrors.CodeParse, "response contains no content")
	}
	return mr.Content[0].Text, nil
}

// classifyStatus maps HTTP status codes onto the error taxonomy: auth errors
// are fatal, rate limits and 5xx are retryable, everything else is external.
func classifyStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperrors.New(apperrors.CodeAuth, msg)
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.New(apperrors.CodeRateLimited, msg)
	case resp.StatusCode >= 500:
		return apperrors.New(apperrors.CodeUnavailable, msg)
	default:
		return apperrors.New(apperrors.CodeExternal, msg)
	}
}
