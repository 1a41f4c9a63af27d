package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultModel is used when neither the request nor the client names a model.
	DefaultModel = "openai/gpt-4o-mini"
	// DefaultTemperature is sent with every completion request.
	DefaultTemperature float32 = 0.7

	providerHost = "openrouter.ai"
)

// Client is a client for the OpenRouter chat completions API.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	// Referer and Title identify the calling application to OpenRouter.
	Referer string
	Title   string
	client  *http.Client
}

// NewClient creates a new LLM client.
func NewClient(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		Referer: "app://note-assistant",
		Title:   "Note Assistant",
		client:  http.DefaultClient,
	}
}

// WithTimeout replaces the underlying HTTP client with one that gives up after d.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.client = &http.Client{Timeout: d}
	}
	return c
}

// ChatRequest represents the request payload for chat completions.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
}

// ChatChoiceMessage represents the message in a chat choice.
type ChatChoiceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatChoice represents a single choice in the chat response.
type ChatChoice struct {
	Index        int               `json:"index"`
	Message      ChatChoiceMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

// ChatResponse represents the response from the chat completions API.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Choices []ChatChoice `json:"choices"`
	Error   *APIError    `json:"error,omitempty"`
}

// ResolveModel returns the model a request will use.
func (c *Client) ResolveModel(model string) string {
	if model != "" {
		return model
	}
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel
}

// Chat sends the messages to the chat completions endpoint and returns the
// content of the first choice. It makes exactly one attempt.
func (c *Client) Chat(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	endpoint := c.BaseURL + "/chat/completions"

	payload := ChatRequest{
		Model:       c.ResolveModel(params.Model),
		Messages:    messages,
		Temperature: DefaultTemperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, params.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return "", newStatusError(resp.StatusCode, raw)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", chatResp.Error
	}
	if len(chatResp.Choices) == 0 {
		return "", ErrNoChoices
	}

	content := chatResp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrNoChoices
	}
	return content, nil
}

// Ping checks that the API is reachable and the credential is accepted.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, "")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return newStatusError(resp.StatusCode, raw)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, apiKey string) {
	if apiKey == "" {
		apiKey = c.APIKey
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	req.Header.Set("Content-Type", "application/json")

	if isProviderHost(req.URL) {
		req.Header.Set("HTTP-Referer", c.Referer)
		req.Header.Set("X-Title", c.Title)
	}
}

func isProviderHost(u *url.URL) bool {
	host := u.Hostname()
	return host == providerHost || strings.HasSuffix(host, "."+providerHost)
}
