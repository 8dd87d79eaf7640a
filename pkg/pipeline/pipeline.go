// Package pipeline turns one source image into one cropped, resized,
// persisted frame. It is the thin orchestration around the crop planner:
// measure, locate the subject, plan, slice, resize, save.
package pipeline

import (
	"fmt"
	"image"
	"log"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/mkovac/focusframe/pkg/planner"
	"github.com/mkovac/focusframe/pkg/types"
)

// SubjectSource reports the focal region of a frame, or ok=false when
// nothing was detected. pkg/subject.Locator satisfies this.
type SubjectSource interface {
	Locate(img image.Image) (types.Rect, bool)
}

// Pipeline processes frames one at a time. Instances hold no per-frame
// state, so one Pipeline may serve many goroutines as long as destination
// paths are disjoint.
type Pipeline struct {
	locator SubjectSource
	target  types.TargetSize
	output  types.OutputConfig
	debug   bool
}

// Result describes what happened to one frame.
type Result struct {
	Region    types.Rect
	Subject   *types.Rect
	Stretched bool
}

// New builds a pipeline. locator may be nil, which disables detection
// and always center-crops. An empty output format lets each destination
// extension pick the encoder.
func New(locator SubjectSource, target types.TargetSize, output types.OutputConfig) (*Pipeline, error) {
	if target.Width <= 0 || target.Height <= 0 {
		return nil, fmt.Errorf("pipeline: invalid target size %dx%d", target.Width, target.Height)
	}
	if output.Quality <= 0 || output.Quality > 100 {
		output.Quality = 90
	}
	return &Pipeline{locator: locator, target: target, output: output}, nil
}

// SetDebugOverlay enables writing an annotated copy of each frame next
// to its output (subject box, crop box, center markers).
func (p *Pipeline) SetDebugOverlay(on bool) { p.debug = on }

// ProcessFrame reads srcPath, crops around the detected subject, resizes
// to the target size and writes the result to dstPath. Sources smaller
// than the target in either dimension skip detection and are stretched
// to fit.
func (p *Pipeline) ProcessFrame(srcPath, dstPath string) (Result, error) {
	img, err := LoadImage(srcPath)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: decode %s: %w", srcPath, err)
	}

	bounds := img.Bounds()
	imgW, imgH := bounds.Dx(), bounds.Dy()

	if imgW < p.target.Width || imgH < p.target.Height {
		log.Printf("warning: %s is %dx%d, smaller than target %dx%d; stretching to fit",
			srcPath, imgW, imgH, p.target.Width, p.target.Height)
		stretched := imaging.Resize(img, p.target.Width, p.target.Height, imaging.Lanczos)
		if err := SaveImage(stretched, dstPath, p.output.Format, p.output.Quality, p.output.Lossless); err != nil {
			return Result{}, fmt.Errorf("pipeline: save %s: %w", dstPath, err)
		}
		return Result{Region: types.Rect{Width: imgW, Height: imgH}, Stretched: true}, nil
	}

	var subject *types.Rect
	if p.locator != nil {
		if r, ok := p.locator.Locate(img); ok {
			subject = &r
		}
	}

	region := planner.PlanCrop(subject, imgW, imgH, p.target)
	cropped := imaging.Crop(img, image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height))

	// Resize even when the crop already matches the target: one code
	// path, and any off-by-one between crop and target washes out here.
	final := imaging.Resize(cropped, p.target.Width, p.target.Height, imaging.Lanczos)

	if err := SaveImage(final, dstPath, p.output.Format, p.output.Quality, p.output.Lossless); err != nil {
		return Result{}, fmt.Errorf("pipeline: save %s: %w", dstPath, err)
	}

	if p.debug {
		overlay := DrawOverlay(img, subject, region)
		dbgPath := debugPath(dstPath)
		if err := SaveImage(overlay, dbgPath, "png", 92, false); err != nil {
			log.Printf("debug overlay save failed for %s: %v", dbgPath, err)
		}
	}

	return Result{Region: region, Subject: subject}, nil
}

// Target returns the pipeline's output resolution.
func (p *Pipeline) Target() types.TargetSize { return p.target }

func debugPath(dstPath string) string {
	ext := filepath.Ext(dstPath)
	return strings.TrimSuffix(dstPath, ext) + "_debug.png"
}
