// Package config loads platon configuration from YAML with environment
// overrides. API keys come from the environment, optionally seeded from a
// .env file via godotenv.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// CorpusSource is the source metadata sentinel identifying the Platonic
// corpus inside a provider index. Presence detection checks for this exact
// string, so it must never change between releases.
const CorpusSource = "platon_analisis_nlp.json"

// Config represents the complete platon configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Paths     PathsConfig     `yaml:"paths"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// PathsConfig configures storage locations.
type PathsConfig struct {
	// DataDir is the root directory for provider indexes, sessions, and logs.
	// Defaults to ~/.platon.
	DataDir string `yaml:"data_dir"`

	// CorpusPath is the path to the pre-processed Platonic corpus JSON.
	CorpusPath string `yaml:"corpus_path"`
}

// RetrievalConfig configures similarity search.
type RetrievalConfig struct {
	// TopK is the number of passages returned per query.
	TopK int `yaml:"top_k"`

	// FetchK is the candidate pool oversampled from the vector index before
	// taking the top K. Must be >= TopK.
	FetchK int `yaml:"fetch_k"`
}

// ChunkingConfig configures upload text splitting.
type ChunkingConfig struct {
	// Size is the maximum chunk length in characters.
	Size int `yaml:"size"`

	// Overlap is the number of characters shared by consecutive chunks.
	Overlap int `yaml:"overlap"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// NewConfig creates a new Config with sensible defaults.
// Chunk size/overlap and top-k match the original RAG parameters.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			DataDir:    defaultDataDir(),
			CorpusPath: filepath.Join("data", CorpusSource),
		},
		Retrieval: RetrievalConfig{
			TopK:   5,
			FetchK: 10,
		},
		Chunking: ChunkingConfig{
			Size:    1000,
			Overlap: 200,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration in priority order: defaults, then the YAML file
// (if present), then PLATON_* environment variables. A .env file in the
// working directory is loaded into the environment first, matching the
// original dotenv behavior; its absence is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := NewConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultConfigPath returns the default config file location
// (~/.platon/config.yaml).
func DefaultConfigPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".platon")
	}
	return filepath.Join(home, ".platon")
}

// loadYAML merges settings from a YAML file into the config.
// A missing file is not an error; defaults apply.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies PLATON_* environment variable overrides.
// Environment variables have the highest priority.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PLATON_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
	}
	if v := os.Getenv("PLATON_CORPUS_PATH"); v != "" {
		c.Paths.CorpusPath = v
	}
	if v := os.Getenv("PLATON_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Retrieval.TopK = k
		}
	}
	if v := os.Getenv("PLATON_FETCH_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Retrieval.FetchK = k
		}
	}
	if v := os.Getenv("PLATON_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Chunking.Size = n
		}
	}
	if v := os.Getenv("PLATON_CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Chunking.Overlap = n
		}
	}
	if v := os.Getenv("PLATON_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.FetchK < c.Retrieval.TopK {
		return fmt.Errorf("retrieval.fetch_k (%d) must be >= top_k (%d)",
			c.Retrieval.FetchK, c.Retrieval.TopK)
	}
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap (%d) must be in [0, size)", c.Chunking.Overlap)
	}
	if c.Paths.DataDir == "" {
		return fmt.Errorf("paths.data_dir must not be empty")
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
