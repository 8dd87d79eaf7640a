package caption

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint
// (llama.cpp server, DashScope, vLLM and the like).
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

type oaMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string or []oaContentPart
}

type oaContentPart struct {
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	ImageURL *oaImageURL `json:"image_url,omitempty"`
}

type oaImageURL struct {
	URL string `json:"url"`
}

type oaChatRequest struct {
	Model       string      `json:"model"`
	Messages    []oaMessage `json:"messages"`
	Temperature float64     `json:"temperature,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	Stream      bool        `json:"stream"`
}

type oaChatResponse struct {
	Choices []struct {
		Message oaMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient builds a client for baseURL. apiKey may be empty for
// local servers that skip auth.
func NewOpenAIClient(baseURL, apiKey, model string) (*OpenAIClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("caption: empty server URL")
	}
	return &OpenAIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

// Describe sends the prompt plus image and returns the cleaned caption.
func (c *OpenAIClient) Describe(ctx context.Context, prompt string, img Payload) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 120*time.Second)
		defer cancel()
	}

	req := oaChatRequest{
		Model: c.model,
		Messages: []oaMessage{{
			Role: "user",
			Content: []oaContentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &oaImageURL{URL: img.DataURL()}},
			},
		}},
		Temperature: 0.7,
		MaxTokens:   512,
	}

	text, err := c.send(ctx, req)
	if err != nil {
		return "", err
	}
	caption := cleanCaption(text)
	if caption == "" {
		return "", fmt.Errorf("caption: empty response from %s", c.baseURL)
	}
	return caption, nil
}

// Validate issues a one-token text request to prove the key and server
// work before the batch spends time on images.
func (c *OpenAIClient) Validate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := oaChatRequest{
		Model:     c.model,
		Messages:  []oaMessage{{Role: "user", Content: "test"}},
		MaxTokens: 1,
	}
	if _, err := c.send(ctx, req); err != nil {
		return fmt.Errorf("caption: validation request failed: %w", err)
	}
	return nil
}

func (c *OpenAIClient) send(ctx context.Context, payload oaChatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("caption: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption: send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("caption: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption: server returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed oaChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("caption: parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("caption: no choices in response")
	}

	switch content := parsed.Choices[0].Message.Content.(type) {
	case string:
		return content, nil
	case []interface{}:
		for _, item := range content {
			if part, ok := item.(map[string]interface{}); ok {
				if text, ok := part["text"].(string); ok && text != "" {
					return text, nil
				}
			}
		}
	}
	return "", fmt.Errorf("caption: no text content in response")
}
