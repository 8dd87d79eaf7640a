package caption

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCleanCaption(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  A dog on grass.  ", "A dog on grass."},
		{"```\nA cat.\n```", "A cat."},
		{"```text\nA cat on\na sofa.\n```", "A cat on a sofa."},
		{"\"quoted caption\"", "quoted caption"},
		{"line one\nline two", "line one line two"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := cleanCaption(tc.in); got != tc.want {
			t.Errorf("cleanCaption(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEncodeImageDownscalesLongSide(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2000, 1000))
	p, err := EncodeImage(img, "jpg", 512, 85)
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}
	if p.MIME != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", p.MIME)
	}
	if p.B64 == "" {
		t.Error("empty payload")
	}
}

func TestEncodeImagePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(3, 3, color.RGBA{255, 0, 0, 255})
	p, err := EncodeImage(img, "png", 0, 0)
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}
	if p.MIME != "image/png" {
		t.Errorf("mime = %q, want image/png", p.MIME)
	}
}

func TestPayloadDataURL(t *testing.T) {
	p := Payload{B64: "aGk=", MIME: "image/jpeg"}
	if got := p.DataURL(); got != "data:image/jpeg;base64,aGk=" {
		t.Errorf("DataURL() = %q", got)
	}
}

func TestSleepBackoffStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := sleepBackoff(ctx, 3); err == nil {
		t.Error("expected context error from cancelled backoff")
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("backoff should return as soon as the context is cancelled")
	}
}

func TestOpenAIClientDescribe(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req oaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "  A red square on white.\n"}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(srv.URL, "sk-test", "qwen-vl-plus")
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Describe(context.Background(), DefaultPrompt, Payload{B64: "aGk=", MIME: "image/jpeg"})
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if got != "A red square on white." {
		t.Errorf("caption = %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
}

func TestOpenAIClientValidateFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(srv.URL, "bad-key", "qwen-vl-plus")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(context.Background()); err == nil {
		t.Error("expected validation failure for 401")
	} else if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should carry status: %v", err)
	}
}

func TestOpenAIClientRejectsEmptyCaption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "   "}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(srv.URL, "", "m")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Describe(context.Background(), DefaultPrompt, Payload{B64: "aGk=", MIME: "image/jpeg"}); err == nil {
		t.Error("expected error for blank caption")
	}
}
