package caption

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/disintegration/imaging"
)

// EncodeImage converts an in-memory image to a model payload. When
// maxDim is positive the long side is downscaled to it first; vision
// endpoints charge by pixels and gain nothing from full-size frames.
func EncodeImage(img image.Image, format string, maxDim, quality int) (Payload, error) {
	if maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	mime := "image/jpeg"
	switch strings.ToLower(format) {
	case "png":
		mime = "image/png"
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return Payload{}, err
		}
	default: // jpg
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return Payload{}, err
		}
	}
	return Payload{B64: base64.StdEncoding.EncodeToString(buf.Bytes()), MIME: mime}, nil
}

// EncodeFile reads an image file as-is and base64-encodes it, picking
// the MIME type from the extension.
func EncodeFile(path string) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("caption: read %s: %w", path, err)
	}
	mime := "image/png"
	low := strings.ToLower(path)
	if strings.HasSuffix(low, ".jpg") || strings.HasSuffix(low, ".jpeg") {
		mime = "image/jpeg"
	} else if strings.HasSuffix(low, ".webp") {
		mime = "image/webp"
	}
	return Payload{B64: base64.StdEncoding.EncodeToString(data), MIME: mime}, nil
}

// DataURL renders the payload as a data URL for OpenAI-style endpoints.
func (p Payload) DataURL() string {
	return "data:" + p.MIME + ";base64," + p.B64
}
