package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the tool configuration. API keys are never written to
// the file; they come from flags or the environment.
type Config struct {
	Target  TargetConfig  `json:"target"`
	Output  OutputConfig  `json:"output"`
	Detect  DetectConfig  `json:"detect"`
	Caption CaptionConfig `json:"caption"`
	Batch   BatchConfig   `json:"batch"`
}

// TargetConfig is the output resolution for a run.
type TargetConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OutputConfig controls how crops are encoded. An empty format keeps
// each source's own extension and encodes to match it.
type OutputConfig struct {
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
}

// DetectConfig configures the subject locator tiers. An empty cascade
// path disables the face tier.
type DetectConfig struct {
	CascadePath string `json:"cascade_path"`
}

// CaptionConfig configures the captioning backend.
type CaptionConfig struct {
	Enabled bool   `json:"enabled"`
	Backend string `json:"backend"` // openai | ollama | gemini
	URL     string `json:"url"`
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	MaxSide int    `json:"max_side"`
}

// BatchConfig configures the bulk driver.
type BatchConfig struct {
	Workers       int  `json:"workers"`
	Recursive     bool `json:"recursive"`
	Rename        bool `json:"rename"`
	KeepOriginals bool `json:"keep_originals"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Target: TargetConfig{Width: 1024, Height: 1024},
		Output: OutputConfig{Quality: 90},
		Detect: DetectConfig{},
		Caption: CaptionConfig{
			Enabled: true,
			Backend: "openai",
			Model:   "qwen-vl-plus-latest",
			MaxSide: 1536,
		},
		Batch: BatchConfig{Workers: 3, KeepOriginals: true},
	}
}

// LoadFromFile loads configuration from a JSON file on top of defaults.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile saves configuration to a JSON file.
func (c *Config) SaveToFile(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Target.Width < 1 || c.Target.Height < 1 {
		return fmt.Errorf("target dimensions must be positive")
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}
	switch c.Output.Format {
	case "", "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.format must be empty (keep source extension), jpg, png or webp")
	}
	if c.Caption.Enabled {
		switch c.Caption.Backend {
		case "openai", "ollama", "gemini":
		default:
			return fmt.Errorf("caption.backend must be openai, ollama or gemini")
		}
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be positive")
	}
	return nil
}

// APIKey resolves the captioning API key from the environment:
// FOCUSFRAME_API_KEY first, then the backend-specific variable.
func (c *Config) APIKey() string {
	if v := os.Getenv("FOCUSFRAME_API_KEY"); v != "" {
		return v
	}
	switch c.Caption.Backend {
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}

// GetConfigPath returns the default configuration file path.
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "focusframe", "config.json")
}
