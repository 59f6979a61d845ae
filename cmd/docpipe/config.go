// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/casestudy"
	"github.com/poiesic/docpipe/ingestion"
)

// AIConfig configures the OpenAI-compatible services.
type AIConfig struct {
	// Host covers both services; the split fields override it.
	Host               string `yaml:"host"`
	EmbeddingHost      string `yaml:"embedding_host"`
	ChatHost           string `yaml:"chat_host"`
	APIKeyEnv          string `yaml:"api_key_env"`
	EmbeddingModel     string `yaml:"embedding_model"`
	ChatModel          string `yaml:"chat_model"`
	EmbeddingDimension int    `yaml:"embedding_dimension"`
}

// IndexConfig selects and configures the search index backend.
type IndexConfig struct {
	Type       string `yaml:"type"` // "memory" or "qdrant"
	Addr       string `yaml:"addr"`
	Collection string `yaml:"collection"`
}

// StorageConfig configures the catalog database.
type StorageConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// BlobConfig configures the filesystem blob store.
type BlobConfig struct {
	Dir           string `yaml:"dir"`
	BaseURL       string `yaml:"base_url"`
	SigningKeyEnv string `yaml:"signing_key_env"`
}

// PipelineConfig tunes the ingestion and case-study pipelines.
type PipelineConfig struct {
	ChunkSize           int     `yaml:"chunk_size"`
	ChunkOverlap        int     `yaml:"chunk_overlap"`
	BatchSize           int     `yaml:"batch_size"`
	Concurrency         int     `yaml:"concurrency"`
	Summarize           *bool   `yaml:"summarize"`
	AcceptanceThreshold float64 `yaml:"acceptance_threshold"`
}

// Config is the root CLI configuration.
type Config struct {
	AI       AIConfig       `yaml:"ai"`
	Index    IndexConfig    `yaml:"index"`
	Storage  StorageConfig  `yaml:"storage"`
	Blobs    BlobConfig     `yaml:"blobs"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// LoadConfig reads the YAML config at path. A missing file yields defaults,
// so the CLI works against local services with no config at all.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.AI.Host == "" {
		cfg.AI.Host = "http://localhost:11434/v1"
	}
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = cfg.AI.Host
	}
	if cfg.AI.ChatHost == "" {
		cfg.AI.ChatHost = cfg.AI.Host
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = "gpt-4o-mini"
	}
	if cfg.AI.EmbeddingDimension <= 0 {
		cfg.AI.EmbeddingDimension = ai.DefaultEmbeddingDimension
	}

	if cfg.Index.Type == "" {
		cfg.Index.Type = "memory"
	}
	if cfg.Index.Addr == "" {
		cfg.Index.Addr = "localhost:6334"
	}
	if cfg.Index.Collection == "" {
		cfg.Index.Collection = "documents"
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "docpipe.db"
	}
	if cfg.Blobs.Dir == "" {
		cfg.Blobs.Dir = "blobs"
	}

	if cfg.Pipeline.ChunkSize <= 0 {
		cfg.Pipeline.ChunkSize = ingestion.DefaultChunkSize
	}
	if cfg.Pipeline.ChunkOverlap <= 0 {
		cfg.Pipeline.ChunkOverlap = ingestion.DefaultChunkOverlap
	}
	if cfg.Pipeline.AcceptanceThreshold <= 0 {
		cfg.Pipeline.AcceptanceThreshold = casestudy.DefaultAcceptanceThreshold
	}
}

// apiKey resolves the AI service key from the configured environment
// variable. "none" satisfies local services that skip authentication.
func (c *Config) apiKey() string {
	if c.AI.APIKeyEnv != "" {
		if key := os.Getenv(c.AI.APIKeyEnv); key != "" {
			return key
		}
	}
	return "none"
}

// signingKey resolves the blob URL signing key, if configured.
func (c *Config) signingKey() []byte {
	if c.Blobs.SigningKeyEnv != "" {
		if key := os.Getenv(c.Blobs.SigningKeyEnv); key != "" {
			return []byte(key)
		}
	}
	return nil
}
