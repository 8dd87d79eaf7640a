package caption

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaClient captions through a local or remote Ollama server.
type OllamaClient struct {
	client *api.Client
	model  string
}

// NewOllamaClient builds a client from a server URL; any path component
// (like /api/chat) is dropped.
func NewOllamaClient(serverURL, model string) (*OllamaClient, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("caption: invalid ollama URL: %w", err)
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &OllamaClient{client: api.NewClient(base, http.DefaultClient), model: model}, nil
}

// Describe sends the prompt plus image and returns the cleaned caption.
func (c *OllamaClient) Describe(ctx context.Context, prompt string, img Payload) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		// CPU-only vision models can take minutes per image.
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}

	imgBytes, err := base64.StdEncoding.DecodeString(img.B64)
	if err != nil {
		return "", fmt.Errorf("caption: decode image payload: %w", err)
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{{
			Role:    "user",
			Content: prompt,
			Images:  []api.ImageData{api.ImageData(imgBytes)},
		}},
		Stream: &streamFalse,
	}

	var responseContent string
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("caption: ollama chat: %w", err)
	}

	caption := cleanCaption(responseContent)
	if caption == "" {
		return "", fmt.Errorf("caption: empty response from ollama")
	}
	return caption, nil
}

// Validate confirms the server is reachable and the model is loadable
// with a one-token text request.
func (c *OllamaClient) Validate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	streamFalse := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: []api.Message{{Role: "user", Content: "test"}},
		Stream:   &streamFalse,
		Options:  map[string]any{"num_predict": 1},
	}
	if err := c.client.Chat(ctx, req, func(api.ChatResponse) error { return nil }); err != nil {
		return fmt.Errorf("caption: ollama validation failed: %w", err)
	}
	return nil
}
