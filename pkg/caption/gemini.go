package caption

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient captions through the Gemini API. A fresh SDK client is
// created per request; it carries no reusable connection state worth
// holding between frames.
type GeminiClient struct {
	apiKey string
	model  string
}

// NewGeminiClient builds a client for the given model.
func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("caption: empty Gemini API key")
	}
	return &GeminiClient{apiKey: strings.TrimSpace(apiKey), model: strings.TrimSpace(model)}, nil
}

// Describe sends the prompt plus image and returns the cleaned caption.
// Transient failures are retried up to three times with linear backoff.
func (c *GeminiClient) Describe(ctx context.Context, prompt string, img Payload) (string, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return "", fmt.Errorf("caption: gemini client: %w", err)
	}
	defer cl.Close()

	imgBytes, err := base64.StdEncoding.DecodeString(img.B64)
	if err != nil {
		return "", fmt.Errorf("caption: decode image payload: %w", err)
	}

	m := cl.GenerativeModel(c.model)
	parts := []genai.Part{
		genai.Text(prompt),
		genai.Blob{MIMEType: img.MIME, Data: imgBytes},
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			if err := sleepBackoff(ctx, attempt); err != nil {
				return "", fmt.Errorf("caption: gemini request failed: %w", lastErr)
			}
			continue
		}
		caption := cleanCaption(firstText(resp))
		if caption == "" {
			return "", fmt.Errorf("caption: empty gemini response")
		}
		return caption, nil
	}
	return "", fmt.Errorf("caption: gemini request failed: %w", lastErr)
}

// Validate issues a one-token text request to prove the key works.
func (c *GeminiClient) Validate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return fmt.Errorf("caption: gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.model)
	m.SetMaxOutputTokens(1)
	if _, err := m.GenerateContent(ctx, genai.Text("test")); err != nil {
		return fmt.Errorf("caption: gemini validation failed: %w", err)
	}
	return nil
}

// sleepBackoff waits attempt*300ms or until ctx is done, whichever
// comes first.
func sleepBackoff(ctx context.Context, attempt int) error {
	t := time.NewTimer(time.Duration(attempt) * 300 * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
