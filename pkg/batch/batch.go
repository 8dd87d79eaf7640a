// Package batch drives a whole directory of images through the frame
// pipeline and the captioner. One bad file never aborts the run: every
// per-image failure is logged with its path and the batch moves on.
package batch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mkovac/focusframe/internal/utils"
	"github.com/mkovac/focusframe/pkg/caption"
	"github.com/mkovac/focusframe/pkg/pipeline"
)

// FrameProcessor is the per-image unit of work. *pipeline.Pipeline
// satisfies this.
type FrameProcessor interface {
	ProcessFrame(srcPath, dstPath string) (pipeline.Result, error)
}

// Options configures one batch run.
type Options struct {
	InputDir  string
	OutputDir string
	Recursive bool

	// Rename renumbers top-level input files to 001.ext before the run.
	Rename bool

	// KeepOriginals leaves sources untouched and keeps crops plus
	// caption sidecars under OutputDir. When false each crop replaces
	// its original and the sidecar lands next to it.
	KeepOriginals bool

	// Workers bounds concurrent caption requests.
	Workers int

	// Prompt overrides the default caption prompt when non-empty.
	Prompt string

	// MaxSide bounds the long side of payloads sent to the captioner;
	// larger frames are re-encoded downscaled. 0 sends files as-is.
	MaxSide int

	// OutputExt forces the extension of written crops (jpg/png/webp).
	// Empty keeps each source's own extension.
	OutputExt string
}

// Summary reports what a run did.
type Summary struct {
	Processed      int
	Failed         int
	Captioned      int
	CaptionsFailed int
}

// Runner processes a directory. captioner may be nil to skip the
// captioning stage entirely.
type Runner struct {
	processor FrameProcessor
	captioner caption.Client
	opts      Options
}

// NewRunner builds a batch runner.
func NewRunner(processor FrameProcessor, captioner caption.Client, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 3
	}
	if opts.Prompt == "" {
		opts.Prompt = caption.DefaultPrompt
	}
	return &Runner{processor: processor, captioner: captioner, opts: opts}
}

// Run executes the batch. The returned error covers run-level problems
// only (bad input root, nothing to do); per-image failures are counted
// in the summary.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	if !utils.DirExists(r.opts.InputDir) {
		return sum, fmt.Errorf("batch: input directory %s does not exist", r.opts.InputDir)
	}
	if err := utils.EnsureDir(r.opts.OutputDir); err != nil {
		return sum, fmt.Errorf("batch: create output directory: %w", err)
	}

	if r.opts.Rename {
		n, err := utils.RenameSequential(r.opts.InputDir)
		if err != nil {
			return sum, fmt.Errorf("batch: rename pass: %w", err)
		}
		if n > 0 {
			log.Printf("renamed %d files in %s", n, r.opts.InputDir)
		}
	}

	files, err := utils.ListImageFiles(r.opts.InputDir, r.opts.Recursive)
	if err != nil {
		return sum, fmt.Errorf("batch: scan %s: %w", r.opts.InputDir, err)
	}
	log.Printf("found %d image files in %s", len(files), r.opts.InputDir)

	type frame struct {
		src string
		dst string
	}
	var done []frame

	for i, src := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		dst, err := utils.OutputPath(src, r.opts.InputDir, r.opts.OutputDir)
		if err != nil {
			log.Printf("[%d/%d] skip %s: %v", i+1, len(files), src, err)
			sum.Failed++
			continue
		}
		if r.opts.OutputExt != "" {
			dst = strings.TrimSuffix(dst, filepath.Ext(dst)) + "." + strings.TrimPrefix(r.opts.OutputExt, ".")
		}
		if _, err := r.processor.ProcessFrame(src, dst); err != nil {
			log.Printf("[%d/%d] failed %s: %v", i+1, len(files), src, err)
			sum.Failed++
			continue
		}
		log.Printf("[%d/%d] wrote %s", i+1, len(files), dst)
		sum.Processed++
		done = append(done, frame{src: src, dst: dst})
	}

	if r.captioner != nil {
		var mu sync.Mutex
		var wg sync.WaitGroup
		sem := make(chan struct{}, r.opts.Workers)

		for _, f := range done {
			if ctx.Err() != nil {
				break
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(f frame) {
				defer wg.Done()
				defer func() { <-sem }()
				err := r.captionFrame(ctx, f.dst)
				mu.Lock()
				if err != nil {
					log.Printf("caption failed for %s: %v", f.dst, err)
					sum.CaptionsFailed++
				} else {
					sum.Captioned++
				}
				mu.Unlock()
			}(f)
		}
		wg.Wait()
	}

	if !r.opts.KeepOriginals {
		for _, f := range done {
			if err := r.replaceOriginal(f.src, f.dst); err != nil {
				log.Printf("replace original %s: %v", f.src, err)
			}
		}
	}

	return sum, nil
}

func (r *Runner) captionFrame(ctx context.Context, imagePath string) error {
	payload, err := r.payloadFor(imagePath)
	if err != nil {
		return err
	}
	text, err := r.captioner.Describe(ctx, r.opts.Prompt, payload)
	if err != nil {
		return err
	}
	return os.WriteFile(utils.CaptionPath(imagePath), []byte(text), 0o644)
}

func (r *Runner) payloadFor(imagePath string) (caption.Payload, error) {
	if r.opts.MaxSide > 0 {
		img, err := pipeline.LoadImage(imagePath)
		if err != nil {
			return caption.Payload{}, err
		}
		b := img.Bounds()
		if b.Dx() > r.opts.MaxSide || b.Dy() > r.opts.MaxSide {
			return caption.EncodeImage(img, "jpg", r.opts.MaxSide, 85)
		}
	}
	return caption.EncodeFile(imagePath)
}

// replaceOriginal moves the cropped frame over its source and carries
// the caption sidecar along. When the crop was written in a different
// format the original is removed and the crop keeps its own extension.
func (r *Runner) replaceOriginal(src, dst string) error {
	target := src
	if srcExt, dstExt := filepath.Ext(src), filepath.Ext(dst); srcExt != dstExt {
		target = strings.TrimSuffix(src, srcExt) + dstExt
	}
	// A forced output extension can map two sources (a.png, a.jpg) onto
	// the same replacement target; never overwrite another file.
	if target != src && utils.FileExists(target) {
		return fmt.Errorf("batch: replacement target %s already exists", target)
	}
	if err := os.Rename(dst, target); err != nil {
		return err
	}
	if target != src {
		if err := os.Remove(src); err != nil {
			return err
		}
	}
	sidecar := utils.CaptionPath(dst)
	if utils.FileExists(sidecar) {
		return os.Rename(sidecar, utils.CaptionPath(target))
	}
	return nil
}
