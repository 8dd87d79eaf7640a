// Package caption produces short textual descriptions of images by
// calling a remote vision model. Backends implement Client; the batch
// driver does not care which service is behind it.
package caption

import (
	"context"
	"strings"
)

// DefaultPrompt asks for a short dataset-style caption.
const DefaultPrompt = `Describe the image content in plain English. Keep the description short.`

// Payload is an image ready to send to a vision model.
type Payload struct {
	B64  string
	MIME string
}

// Client describes one image at a time. Validate performs a minimal
// request so bad credentials or an unreachable server fail the run
// before any image work starts.
type Client interface {
	Describe(ctx context.Context, prompt string, img Payload) (string, error)
	Validate(ctx context.Context) error
}

// cleanCaption normalizes model output into a single-block caption:
// fences stripped, whitespace collapsed, surrounding quotes removed.
func cleanCaption(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`\"")
	return strings.Join(strings.Fields(raw), " ")
}
