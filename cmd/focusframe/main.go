package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/mkovac/focusframe"
	"github.com/mkovac/focusframe/internal/config"
	"github.com/mkovac/focusframe/pkg/batch"
	"github.com/mkovac/focusframe/pkg/caption"
	"github.com/mkovac/focusframe/pkg/types"
)

func main() {
	var (
		configPath string

		in, out       string
		width, height int
		recursive     bool
		rename        bool
		keepOriginals bool

		format   string
		quality  int
		lossless bool

		cascade   string
		noSmart   bool
		debug     bool

		doCaption bool
		backend   string
		url       string
		model     string
		apiKey    string
		prompt    string
		workers   int
		sendSize  int
	)

	flag.StringVar(&configPath, "config", "", "JSON config file (default ~/.config/focusframe/config.json if present; flags override it)")

	flag.StringVar(&in, "in", "", "input image directory")
	flag.StringVar(&out, "out", "", "output directory (default <in>/output)")
	flag.IntVar(&width, "width", 0, "target width")
	flag.IntVar(&height, "height", 0, "target height")
	flag.BoolVar(&recursive, "recursive", false, "recurse into subdirectories")
	flag.BoolVar(&rename, "rename", false, "renumber input files to 001.ext first")
	flag.BoolVar(&keepOriginals, "keep-originals", true, "keep originals; false replaces them with the crops")

	flag.StringVar(&format, "ext", "", "output format for crops: jpg|png|webp (default keeps each source's extension)")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP lossless mode")

	flag.StringVar(&cascade, "cascade", "", "Haar cascade XML for the face tier (empty disables it)")
	flag.BoolVar(&noSmart, "no-smart", false, "disable the saliency tier (center crop fallback only)")
	flag.BoolVar(&debug, "debug", false, "write annotated overlay images")

	flag.BoolVar(&doCaption, "caption", true, "generate caption sidecars")
	flag.StringVar(&backend, "backend", "", "caption backend: openai|ollama|gemini")
	flag.StringVar(&url, "url", "", "caption server URL (openai/ollama backends)")
	flag.StringVar(&model, "model", "", "caption model name")
	flag.StringVar(&apiKey, "key", "", "API key (default from FOCUSFRAME_API_KEY or backend env)")
	flag.StringVar(&prompt, "prompt", "", "caption prompt override")
	flag.IntVar(&workers, "workers", 0, "concurrent caption requests")
	flag.IntVar(&sendSize, "sendsize", 0, "max long side sent to the model (px), 0=as saved")

	flag.Parse()

	cfg := config.Default()
	if configPath == "" {
		if p := config.GetConfigPath(); fileExists(p) {
			configPath = p
		}
	}
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	// Flags override the config file where given.
	if width > 0 {
		cfg.Target.Width = width
	}
	if height > 0 {
		cfg.Target.Height = height
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if quality > 0 {
		cfg.Output.Quality = quality
	}
	if lossless {
		cfg.Output.Lossless = true
	}
	if cascade != "" {
		cfg.Detect.CascadePath = cascade
	}
	if backend != "" {
		cfg.Caption.Backend = backend
	}
	if url != "" {
		cfg.Caption.URL = url
	}
	if model != "" {
		cfg.Caption.Model = model
	}
	if prompt != "" {
		cfg.Caption.Prompt = prompt
	}
	if workers > 0 {
		cfg.Batch.Workers = workers
	}
	if sendSize > 0 {
		cfg.Caption.MaxSide = sendSize
	}
	cfg.Caption.Enabled = doCaption
	cfg.Batch.Recursive = recursive
	cfg.Batch.Rename = rename
	cfg.Batch.KeepOriginals = keepOriginals

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if in == "" {
		log.Fatalf("usage: %s -in <dir> [-out <dir>] [-width N -height N] [-backend openai|ollama|gemini]",
			filepath.Base(os.Args[0]))
	}
	if out == "" {
		out = filepath.Join(in, "output")
	}

	ctx := context.Background()

	var captioner caption.Client
	if cfg.Caption.Enabled {
		var err error
		captioner, err = newCaptioner(cfg, apiKey)
		if err != nil {
			log.Fatal(err)
		}
		if err := captioner.Validate(ctx); err != nil {
			log.Fatal(err)
		}
		log.Printf("caption backend %s validated", cfg.Caption.Backend)
	}

	app, err := focusframe.New(focusframe.Options{
		Target:         types.TargetSize{Width: cfg.Target.Width, Height: cfg.Target.Height},
		Output:         types.OutputConfig{Format: cfg.Output.Format, Quality: cfg.Output.Quality, Lossless: cfg.Output.Lossless},
		CascadePath:    cfg.Detect.CascadePath,
		DisableSalient: noSmart,
		Captioner:      captioner,
		Debug:          debug,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	sum, err := app.ProcessDirectory(ctx, batch.Options{
		InputDir:      in,
		OutputDir:     out,
		Recursive:     cfg.Batch.Recursive,
		Rename:        cfg.Batch.Rename,
		KeepOriginals: cfg.Batch.KeepOriginals,
		Workers:       cfg.Batch.Workers,
		Prompt:        cfg.Caption.Prompt,
		MaxSide:       cfg.Caption.MaxSide,
		OutputExt:     cfg.Output.Format,
	})
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("done: %d processed, %d failed, %d captioned, %d caption failures",
		sum.Processed, sum.Failed, sum.Captioned, sum.CaptionsFailed)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func newCaptioner(cfg *config.Config, apiKey string) (caption.Client, error) {
	if apiKey == "" {
		apiKey = cfg.APIKey()
	}

	switch cfg.Caption.Backend {
	case "ollama":
		url := cfg.Caption.URL
		if url == "" {
			url = "http://localhost:11434"
		}
		return caption.NewOllamaClient(url, cfg.Caption.Model)
	case "gemini":
		return caption.NewGeminiClient(apiKey, cfg.Caption.Model)
	default: // openai
		url := cfg.Caption.URL
		if url == "" {
			url = "https://dashscope.aliyuncs.com/compatible-mode"
		}
		return caption.NewOpenAIClient(url, apiKey, cfg.Caption.Model)
	}
}
