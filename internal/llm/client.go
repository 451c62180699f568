package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/liliang-cn/ghostdesk/internal/domain"
)

// Connection budgets. These are deliberately generous: slow self-hosted
// models can take well over a minute to answer a long prompt.
const (
	connectTimeout = 30 * time.Second
	readTimeout    = 120 * time.Second
	probeTimeout   = 10 * time.Second
)

// Client calls any OpenAI-compatible chat completions endpoint. The endpoint
// configuration arrives with every request; nothing is stored. Each call is
// a single attempt with no retry.
type Client struct {
	httpClient  *http.Client
	probeClient *http.Client
	logger      *zap.Logger
}

// NewClient creates an LLM client
func NewClient(logger *zap.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   readTimeout,
			Transport: transport,
		},
		probeClient: &http.Client{
			Timeout:   probeTimeout,
			Transport: transport,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Chat sends one system+user exchange to {baseUrl}/chat/completions and
// returns the assistant's raw text content.
func (c *Client) Chat(cfg domain.LLMConfig, systemPrompt, userPrompt string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	body, err := json.Marshal(chatRequest{
		Model:       cfg.ModelID,
		Messages:    messages,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := endpointURL(cfg.BaseURL, "/chat/completions")
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	c.logger.Info("calling llm endpoint",
		zap.String("url", url),
		zap.String("model", cfg.ModelID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("llm endpoint returned error status",
			zap.Int("status", resp.StatusCode),
		)
		return "", &domain.UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", domain.ErrUnparsableResponse)
	}

	content := chatResp.Choices[0].Message.Content
	c.logger.Info("llm response received",
		zap.Int("length", len(content)),
		zap.Int("tokens", chatResp.Usage.TotalTokens),
	)

	return content, nil
}

// TestConnection probes {baseUrl}/models with the given credentials
func (c *Client) TestConnection(cfg domain.LLMConfig) error {
	url := endpointURL(cfg.BaseURL, "/models")
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := c.probeClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &domain.UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return nil
}

func endpointURL(baseURL, path string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/") + path
}

// classifyTransportError separates timeouts from other transport failures
// so callers can report them distinctly.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
}
