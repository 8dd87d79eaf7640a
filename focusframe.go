// Package focusframe batch-prepares folders of images for dataset
// curation: each image is cropped to a target resolution around its
// detected focal region and captioned by a remote vision model.
//
// Subject detection is layered: a Haar-cascade face detector first
// (largest face wins), then smartcrop saliency analysis, then a plain
// center crop. Sources smaller than the target are stretched to fit
// instead of cropped. Captions are written as .txt sidecars next to the
// processed images.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/mkovac/focusframe"
//		"github.com/mkovac/focusframe/pkg/batch"
//		"github.com/mkovac/focusframe/pkg/types"
//	)
//
//	func main() {
//		app, err := focusframe.New(focusframe.Options{
//			Target: types.TargetSize{Width: 1024, Height: 1024},
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer app.Close()
//
//		sum, err := app.ProcessDirectory(context.Background(), batch.Options{
//			InputDir:      "./photos",
//			OutputDir:     "./photos/out",
//			KeepOriginals: true,
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("processed %d, failed %d", sum.Processed, sum.Failed)
//	}
//
// The package consists of four main components:
//
// 1. Planner (pkg/planner): focus-aware crop geometry
// 2. Subject (pkg/subject): layered face/saliency subject locator
// 3. Pipeline (pkg/pipeline): per-frame crop, resize and persist
// 4. Caption (pkg/caption): vision-model captioning backends
package focusframe

import (
	"context"
	"fmt"

	"github.com/mkovac/focusframe/pkg/batch"
	"github.com/mkovac/focusframe/pkg/caption"
	"github.com/mkovac/focusframe/pkg/pipeline"
	"github.com/mkovac/focusframe/pkg/subject"
	"github.com/mkovac/focusframe/pkg/types"
)

// Version of the focusframe library
const Version = "1.0.0"

// Options configures an App.
type Options struct {
	Target types.TargetSize
	Output types.OutputConfig

	// CascadePath points at a Haar cascade XML; empty disables the
	// face tier.
	CascadePath string

	// DisableSalient drops the saliency tier, leaving center crops
	// when no face is found (or always, with no cascade).
	DisableSalient bool

	// Captioner handles describe calls; nil disables captioning.
	Captioner caption.Client

	// Debug writes annotated overlay images next to each output.
	Debug bool
}

// App ties the subject locator, frame pipeline and captioner together.
type App struct {
	locator   *subject.Locator
	pipeline  *pipeline.Pipeline
	captioner caption.Client
}

// New builds an App. The detector tiers are constructed once and reused
// for every frame; call Close to release them.
func New(opts Options) (*App, error) {
	var tiers []subject.Source
	if opts.CascadePath != "" {
		face, err := subject.NewFaceSource(opts.CascadePath)
		if err != nil {
			return nil, fmt.Errorf("focusframe: %w", err)
		}
		tiers = append(tiers, face)
	}
	if !opts.DisableSalient {
		tiers = append(tiers, subject.NewSalientSource(opts.Target))
	}
	locator := subject.NewLocator(tiers...)

	p, err := pipeline.New(locator, opts.Target, opts.Output)
	if err != nil {
		return nil, err
	}
	p.SetDebugOverlay(opts.Debug)

	return &App{locator: locator, pipeline: p, captioner: opts.Captioner}, nil
}

// ProcessFrame crops and persists a single image.
func (a *App) ProcessFrame(srcPath, dstPath string) (pipeline.Result, error) {
	return a.pipeline.ProcessFrame(srcPath, dstPath)
}

// ProcessDirectory runs the batch driver over opts.InputDir.
func (a *App) ProcessDirectory(ctx context.Context, opts batch.Options) (batch.Summary, error) {
	return batch.NewRunner(a.pipeline, a.captioner, opts).Run(ctx)
}

// Captioner returns the configured caption client, or nil.
func (a *App) Captioner() caption.Client { return a.captioner }

// Close releases detector resources.
func (a *App) Close() error {
	return a.locator.Close()
}
