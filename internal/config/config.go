package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration. YAML values layer over compiled
// defaults; environment variables win last. Keyword lists left empty defer
// to the analyzers' built-in vocabularies.
type Config struct {
	Inputs struct {
		Paths []string `yaml:"paths"`
	} `yaml:"inputs"`
	Analysis struct {
		MinStrength       float64  `yaml:"min_strength"`
		Parallelism       int      `yaml:"parallelism"`
		MaxTouchpoints    int      `yaml:"max_touchpoints"`
		EmitterKeywords   []string `yaml:"emitter_keywords"`
		ResponderKeywords []string `yaml:"responder_keywords"`
	} `yaml:"analysis"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	AI struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"ai"`
}

// DefaultConfig returns the compiled defaults: analyze ./examples at
// min-strength 0.3, one worker per CPU, touchpoints capped at 5, history in
// archlens.db, narration off.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Inputs.Paths = []string{"./examples"}
	cfg.Analysis.MinStrength = 0.3
	cfg.Analysis.MaxTouchpoints = 5
	cfg.Storage.Path = "archlens.db"
	cfg.AI.Model = "gemini-2.5-flash"
	return cfg
}

// LoadConfig layers an optional YAML file and the environment over the
// defaults. A missing file is not an error; an unreadable or malformed one
// is.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := DefaultConfig()

	// 2. Layer the YAML config when present
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults stand
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, err
			}
		}
	}

	// 3. Override with Environment Variables if present
	if apiKey := os.Getenv("ARCHLENS_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("ARCHLENS_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if db := os.Getenv("ARCHLENS_DB"); db != "" {
		cfg.Storage.Path = db
	}

	return cfg, nil
}
