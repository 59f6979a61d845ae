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


package docpipe

import (
	"log/slog"

	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/ai/openai"
	"github.com/poiesic/docpipe/ai/plaintext"
	"github.com/poiesic/docpipe/ai/pptx"
	"github.com/poiesic/docpipe/blob"
	"github.com/poiesic/docpipe/casestudy"
	"github.com/poiesic/docpipe/index"
	"github.com/poiesic/docpipe/ingestion"
	"github.com/poiesic/docpipe/rendition"
	"github.com/poiesic/docpipe/storage"
	"github.com/poiesic/docpipe/storage/badger"
)

// Platform bundles the catalog, blob store, search index, and AI services
// behind one handle. It owns the lifecycle of everything it opens, including
// the index manager passed to NewPlatform.
type Platform struct {
	backend  *badger.Backend
	catalog  storage.CatalogRepository
	results  storage.ValidationResultRepository
	blobs    blob.Store
	index    index.Manager
	provider ai.AIProvider
	logger   *slog.Logger
}

// PlatformOption configures a Platform.
type PlatformOption func(*platformOptions)

type platformOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
	blobOpts []blob.FSOption
}

// WithAIConfig sets the configuration used to build the default AI provider.
func WithAIConfig(config *ai.Config) PlatformOption {
	return func(o *platformOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a ready AI provider instead of building one from
// configuration. The platform takes ownership and closes it.
func WithProvider(provider ai.AIProvider) PlatformOption {
	return func(o *platformOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps the catalog in memory. Intended for tests.
func WithInMemoryStorage() PlatformOption {
	return func(o *platformOptions) {
		o.inMemory = true
	}
}

// WithBlobOptions passes options through to the filesystem blob store.
func WithBlobOptions(opts ...blob.FSOption) PlatformOption {
	return func(o *platformOptions) {
		o.blobOpts = opts
	}
}

// NewPlatform opens the catalog database at dbPath, the blob store at
// blobDir, and the AI provider, and attaches the given index manager.
func NewPlatform(dbPath, blobDir string, indexManager index.Manager, opts ...PlatformOption) (*Platform, error) {
	// Apply options
	options := &platformOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(dbPath, options.inMemory)
	if err != nil {
		return nil, err
	}

	catalog := badger.NewCatalogRepository(backend)
	results := badger.NewValidationResultRepository(backend)

	// Open blob store
	blobs, err := blob.NewFSStore(blobDir, options.blobOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &Platform{
		backend:  backend,
		catalog:  catalog,
		results:  results,
		blobs:    blobs,
		index:    indexManager,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

func (p *Platform) Close() error {
	// Close AI provider first
	if err := p.provider.Close(); err != nil {
		p.logger.Error("error closing AI provider", "err", err)
	}

	// Close the index
	if p.index != nil {
		if err := p.index.Close(); err != nil {
			p.logger.Error("error closing index", "err", err)
			return err
		}
	}

	// Close backend
	if err := p.backend.Close(); err != nil {
		p.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (p *Platform) Catalog() storage.CatalogRepository {
	return p.catalog
}

func (p *Platform) ValidationResults() storage.ValidationResultRepository {
	return p.results
}

func (p *Platform) Blobs() blob.Store {
	return p.blobs
}

func (p *Platform) Index() index.Manager {
	return p.index
}

// NewExtractor builds the default text extractor: plain text with a route
// for generated presentation decks.
func NewExtractor() ai.TextExtractor {
	mux := ai.NewExtractorMux(plaintext.NewExtractor())
	mux.Handle(casestudy.PptxContentType, pptx.NewExtractor())
	return mux
}

func (p *Platform) NewOrchestrator(opts ...ingestion.Option) (*ingestion.Orchestrator, error) {
	return ingestion.NewOrchestrator(p.blobs, NewExtractor(), p.provider, p.index, p.catalog, opts...)
}

func (p *Platform) NewValidationPipeline(opts ...casestudy.PipelineOption) (*casestudy.Pipeline, error) {
	return casestudy.NewPipeline(p.provider.ChatModel(), p.results, opts...)
}

// NewGenerator builds a wizard-driven case study generator. A nil builder
// uses the default rendition settings.
func (p *Platform) NewGenerator(builder *rendition.Builder) (*casestudy.Generator, error) {
	return casestudy.NewGenerator(p.provider.ChatModel(), builder, p.blobs, p.catalog)
}
