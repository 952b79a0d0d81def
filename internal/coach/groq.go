// Package coach talks to the Groq chat-completions API to generate training
// programs and post-session notes.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/claude/reprx/internal/metrics"
)

// ErrEmptyResponse is returned when the API answers without any content.
var ErrEmptyResponse = errors.New("empty response from model")

// Config holds the Groq connection settings.
type Config struct {
	APIKey       string
	BaseURL      string
	ProgramModel string
	NoteModel    string
}

// Client is a Groq chat-completions client.
type Client struct {
	cfg        Config
	httpClient *http.Client
	metrics    *metrics.Manager
	log        *slog.Logger
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// ChatRequest is the chat-completions request body.
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// ChatResponse is the subset of the chat-completions response we read.
type ChatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient creates a Groq client.
func NewClient(cfg Config, m *metrics.Manager, log *slog.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		metrics:    m,
		log:        log,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

// chat sends one completion request and returns the first choice's content.
func (c *Client) chat(ctx context.Context, req ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", c.fail(fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.fail(fmt.Errorf("reading response: %w", err))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return "", c.fail(fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err))
	}
	if chatResp.Error != nil {
		return "", c.fail(fmt.Errorf("groq error (status %d): %s", resp.StatusCode, chatResp.Error.Message))
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.fail(fmt.Errorf("groq returned status %d", resp.StatusCode))
	}
	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", c.fail(ErrEmptyResponse)
	}
	return chatResp.Choices[0].Message.Content, nil
}

func (c *Client) fail(err error) error {
	c.metrics.CounterExternalFailures.WithLabelValues(metrics.ServiceGroq).Inc()
	return err
}
