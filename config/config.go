// Package config loads and validates ragkit's runtime configuration,
// merging hardcoded defaults, a project YAML file, and environment
// variable overrides in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete ragkit configuration.
type Config struct {
	Retrieval  RetrievalConfig  `yaml:"retrieval" json:"retrieval"`
	Store      StoreConfig      `yaml:"store" json:"store"`
	Context    ContextConfig    `yaml:"context" json:"context"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	LLM        LLMConfig        `yaml:"llm" json:"llm"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// RetrievalConfig tunes the hybrid retriever and its fusion strategy.
type RetrievalConfig struct {
	Mode             string  `yaml:"mode" json:"mode"` // vector, keyword, hybrid, mmr
	VectorWeight     float64 `yaml:"vector_weight" json:"vector_weight"`
	RRFConstant      int     `yaml:"rrf_constant" json:"rrf_constant"`
	FusionStrategy   string  `yaml:"fusion_strategy" json:"fusion_strategy"` // rrf, weighted_sum, zscore
	MMRLambda        float64 `yaml:"mmr_lambda" json:"mmr_lambda"`
	CandidateFactor  int     `yaml:"candidate_factor" json:"candidate_factor"`
	DefaultLimit     int     `yaml:"default_limit" json:"default_limit"`
	SimilarityFloor  float64 `yaml:"similarity_floor" json:"similarity_floor"`
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	Backend       string `yaml:"backend" json:"backend"` // memory, sqlite, hnsw
	Path          string `yaml:"path" json:"path"`
	Table         string `yaml:"table" json:"table"`
	Dimensions    int    `yaml:"dimensions" json:"dimensions"`
	LRUCacheSize  int    `yaml:"lru_cache_size" json:"lru_cache_size"`
	StreamBatch   int    `yaml:"stream_batch" json:"stream_batch"`
	KeywordBackend string `yaml:"keyword_backend" json:"keyword_backend"` // memory, bleve
}

// ContextConfig tunes prompt-assembly from ranked results.
type ContextConfig struct {
	TokenBudget     int    `yaml:"token_budget" json:"token_budget"`
	PerSourceCap    int    `yaml:"per_source_cap" json:"per_source_cap"`
	IncludeMetadata bool   `yaml:"include_metadata" json:"include_metadata"`
	IncludeScore    bool   `yaml:"include_score" json:"include_score"`
	Separator       string `yaml:"separator" json:"separator"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	Provider  string `yaml:"provider" json:"provider"`
	Model     string `yaml:"model" json:"model"`
	BatchSize int    `yaml:"batch_size" json:"batch_size"`
}

// LLMConfig configures the language-model provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider" json:"provider"`
	Model       string  `yaml:"model" json:"model"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
}

// ServerConfig configures the HTTP demo server.
type ServerConfig struct {
	Port     int    `yaml:"port" json:"port"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// LoggingConfig configures the slog-based logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text, json
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Retrieval: RetrievalConfig{
			Mode:            "hybrid",
			VectorWeight:    0.5,
			RRFConstant:     60,
			FusionStrategy:  "rrf",
			MMRLambda:       0.5,
			CandidateFactor: 3,
			DefaultLimit:    10,
			SimilarityFloor: 0,
		},
		Store: StoreConfig{
			Backend:        "sqlite",
			Path:           "ragkit.db",
			Table:          "chunks",
			Dimensions:     768,
			LRUCacheSize:   1000,
			StreamBatch:    2000,
			KeywordBackend: "memory",
		},
		Context: ContextConfig{
			TokenBudget:     4000,
			PerSourceCap:    0,
			IncludeMetadata: true,
			IncludeScore:    false,
			Separator:       "\n\n---\n\n",
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "",
			Model:     "",
			BatchSize: 100,
		},
		LLM: LLMConfig{
			Provider:    "",
			Model:       "",
			Temperature: 0.2,
			MaxTokens:   1024,
		},
		Server: ServerConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a Config from defaults, a project file (ragkit.yaml or
// ragkit.yml in dir), and RAGKIT_* environment overrides, in that
// order of increasing precedence, then validates the result.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{"ragkit.yaml", "ragkit.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return c.loadYAML(path)
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays non-zero-valued fields of other onto c.
func (c *Config) mergeWith(other *Config) {
	if other.Retrieval.Mode != "" {
		c.Retrieval.Mode = other.Retrieval.Mode
	}
	if other.Retrieval.VectorWeight != 0 {
		c.Retrieval.VectorWeight = other.Retrieval.VectorWeight
	}
	if other.Retrieval.RRFConstant != 0 {
		c.Retrieval.RRFConstant = other.Retrieval.RRFConstant
	}
	if other.Retrieval.FusionStrategy != "" {
		c.Retrieval.FusionStrategy = other.Retrieval.FusionStrategy
	}
	if other.Retrieval.MMRLambda != 0 {
		c.Retrieval.MMRLambda = other.Retrieval.MMRLambda
	}
	if other.Retrieval.CandidateFactor != 0 {
		c.Retrieval.CandidateFactor = other.Retrieval.CandidateFactor
	}
	if other.Retrieval.DefaultLimit != 0 {
		c.Retrieval.DefaultLimit = other.Retrieval.DefaultLimit
	}
	if other.Retrieval.SimilarityFloor != 0 {
		c.Retrieval.SimilarityFloor = other.Retrieval.SimilarityFloor
	}

	if other.Store.Backend != "" {
		c.Store.Backend = other.Store.Backend
	}
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}
	if other.Store.Table != "" {
		c.Store.Table = other.Store.Table
	}
	if other.Store.Dimensions != 0 {
		c.Store.Dimensions = other.Store.Dimensions
	}
	if other.Store.LRUCacheSize != 0 {
		c.Store.LRUCacheSize = other.Store.LRUCacheSize
	}
	if other.Store.StreamBatch != 0 {
		c.Store.StreamBatch = other.Store.StreamBatch
	}
	if other.Store.KeywordBackend != "" {
		c.Store.KeywordBackend = other.Store.KeywordBackend
	}

	if other.Context.TokenBudget != 0 {
		c.Context.TokenBudget = other.Context.TokenBudget
	}
	if other.Context.PerSourceCap != 0 {
		c.Context.PerSourceCap = other.Context.PerSourceCap
	}
	if other.Context.Separator != "" {
		c.Context.Separator = other.Context.Separator
	}
	if other.Context.IncludeMetadata {
		c.Context.IncludeMetadata = true
	}
	if other.Context.IncludeScore {
		c.Context.IncludeScore = true
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.BatchSize != 0 {
		c.Embeddings.BatchSize = other.Embeddings.BatchSize
	}

	if other.LLM.Provider != "" {
		c.LLM.Provider = other.LLM.Provider
	}
	if other.LLM.Model != "" {
		c.LLM.Model = other.LLM.Model
	}
	if other.LLM.Temperature != 0 {
		c.LLM.Temperature = other.LLM.Temperature
	}
	if other.LLM.MaxTokens != 0 {
		c.LLM.MaxTokens = other.LLM.MaxTokens
	}

	if other.Server.Port != 0 {
		c.Server.Port = other.Server.Port
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.Format != "" {
		c.Logging.Format = other.Logging.Format
	}
}

// applyEnvOverrides applies RAGKIT_* environment variable overrides,
// the highest-precedence configuration source.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("RAGKIT_RETRIEVAL_MODE"); v != "" {
		c.Retrieval.Mode = v
	}
	if v := os.Getenv("RAGKIT_VECTOR_WEIGHT"); v != "" {
		if w, err := strconv.ParseFloat(v, 64); err == nil && w >= 0 && w <= 1 {
			c.Retrieval.VectorWeight = w
		}
	}
	if v := os.Getenv("RAGKIT_RRF_CONSTANT"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Retrieval.RRFConstant = k
		}
	}
	if v := os.Getenv("RAGKIT_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("RAGKIT_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("RAGKIT_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("RAGKIT_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("RAGKIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("RAGKIT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// Validate checks the configuration for internally-consistent,
// in-range values.
func (c *Config) Validate() error {
	if c.Retrieval.VectorWeight < 0 || c.Retrieval.VectorWeight > 1 {
		return fmt.Errorf("retrieval.vector_weight must be between 0 and 1, got %f", c.Retrieval.VectorWeight)
	}
	if c.Retrieval.MMRLambda < 0 || c.Retrieval.MMRLambda > 1 {
		return fmt.Errorf("retrieval.mmr_lambda must be between 0 and 1, got %f", c.Retrieval.MMRLambda)
	}
	if c.Retrieval.DefaultLimit < 1 {
		return fmt.Errorf("retrieval.default_limit must be positive, got %d", c.Retrieval.DefaultLimit)
	}

	validModes := map[string]bool{"vector": true, "keyword": true, "hybrid": true, "mmr": true}
	if !validModes[strings.ToLower(c.Retrieval.Mode)] {
		return fmt.Errorf("retrieval.mode must be vector, keyword, hybrid, or mmr, got %s", c.Retrieval.Mode)
	}

	validFusion := map[string]bool{"rrf": true, "weighted_sum": true, "zscore": true}
	if !validFusion[strings.ToLower(c.Retrieval.FusionStrategy)] {
		return fmt.Errorf("retrieval.fusion_strategy must be rrf, weighted_sum, or zscore, got %s", c.Retrieval.FusionStrategy)
	}

	validStoreBackends := map[string]bool{"memory": true, "sqlite": true, "hnsw": true}
	if !validStoreBackends[strings.ToLower(c.Store.Backend)] {
		return fmt.Errorf("store.backend must be memory, sqlite, or hnsw, got %s", c.Store.Backend)
	}
	if c.Store.Dimensions < 1 {
		return fmt.Errorf("store.dimensions must be positive, got %d", c.Store.Dimensions)
	}

	validKeywordBackends := map[string]bool{"memory": true, "bleve": true}
	if !validKeywordBackends[strings.ToLower(c.Store.KeywordBackend)] {
		return fmt.Errorf("store.keyword_backend must be memory or bleve, got %s", c.Store.KeywordBackend)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %s", c.Logging.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("logging.format must be text or json, got %s", c.Logging.Format)
	}

	return nil
}

// WriteYAML writes the configuration to path as YAML.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// FindProjectRoot finds the project root by walking up from startDir,
// looking for a .git directory or a ragkit.yaml/ragkit.yml file.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}
		if fileExists(filepath.Join(currentDir, "ragkit.yaml")) ||
			fileExists(filepath.Join(currentDir, "ragkit.yml")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", fmt.Errorf("no project root found above %s", absDir)
		}
		currentDir = parentDir
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
