package subject

import (
	"fmt"
	"image"

	"github.com/muesli/smartcrop"
	"github.com/muesli/smartcrop/nfnt"

	"github.com/mkovac/focusframe/pkg/types"
)

// SalientSource finds the most visually interesting region using
// smartcrop's content analysis (edges, skin tones, saturation). It asks
// the analyzer for the best region at the batch's target aspect, so the
// reported subject already leans toward what the final frame can hold.
type SalientSource struct {
	analyzer smartcrop.Analyzer
	target   types.TargetSize
}

// NewSalientSource builds a saliency tier for the given target size.
func NewSalientSource(target types.TargetSize) *SalientSource {
	return &SalientSource{
		analyzer: smartcrop.NewAnalyzer(nfnt.NewDefaultResizer()),
		target:   target,
	}
}

// Locate returns the best-scoring region, or ok=false for degenerate
// frames the analyzer cannot score.
func (s *SalientSource) Locate(img image.Image) (types.Rect, bool, error) {
	crop, err := s.analyzer.FindBestCrop(img, s.target.Width, s.target.Height)
	if err != nil {
		return types.Rect{}, false, fmt.Errorf("subject: saliency analysis: %w", err)
	}
	if crop.Empty() {
		return types.Rect{}, false, nil
	}
	return types.Rect{X: crop.Min.X, Y: crop.Min.Y, Width: crop.Dx(), Height: crop.Dy()}, true, nil
}
