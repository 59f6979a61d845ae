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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/docpipe"
	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/ai/openai"
	"github.com/poiesic/docpipe/blob"
	"github.com/poiesic/docpipe/casestudy"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/index"
	"github.com/poiesic/docpipe/index/memory"
	"github.com/poiesic/docpipe/index/qdrant"
	"github.com/poiesic/docpipe/ingestion"
	"github.com/poiesic/docpipe/rendition"
	"github.com/poiesic/docpipe/storage"
	badgerstore "github.com/poiesic/docpipe/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "docpipe",
		Usage: "Document ingestion, hybrid search, and case study generation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "docpipe.yaml",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file before resolving secrets",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Upload a document version and run it through the indexing pipeline",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the document to upload",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Document title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "document",
						Usage: "Existing document id to add a version to (omit to create a new document)",
					},
					&cli.StringFlag{
						Name:  "content-type",
						Usage: "MIME type of the uploaded file",
						Value: "text/plain",
					},
					&cli.StringFlag{
						Name:  "doc-type",
						Usage: "Document type facet",
						Value: "CASE_STUDY",
					},
					&cli.StringFlag{Name: "domain", Usage: "Domain facet"},
					&cli.StringFlag{Name: "industry", Usage: "Industry facet"},
					&cli.StringFlag{Name: "business-unit", Usage: "Business unit facet"},
					&cli.StringFlag{Name: "sbu", Usage: "Strategic business unit facet"},
					&cli.StringFlag{Name: "customer", Usage: "Customer name facet"},
					&cli.StringSliceFlag{Name: "technology", Usage: "Technology facet (repeatable)"},
					&cli.BoolFlag{
						Name:  "no-summary",
						Usage: "Skip the summarization step",
					},
				},
			},
			{
				Name:   "purge",
				Usage:  "Remove a document's search records and stored blobs",
				Action: purgeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "document",
						Aliases:  []string{"d"},
						Usage:    "Document id to purge",
						Required: true,
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Run a hybrid search over the index",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Search query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.StringFlag{Name: "domain", Usage: "Restrict to a domain"},
					&cli.StringFlag{Name: "industry", Usage: "Restrict to an industry"},
					&cli.StringFlag{Name: "business-unit", Usage: "Restrict to a business unit"},
					&cli.StringFlag{Name: "sbu", Usage: "Restrict to a strategic business unit"},
					&cli.StringFlag{Name: "customer", Usage: "Restrict to a customer"},
					&cli.StringFlag{Name: "doc-type", Usage: "Restrict to a document type"},
					&cli.StringSliceFlag{Name: "technology", Usage: "Match any of these technologies"},
				},
			},
			{
				Name:   "validate",
				Usage:  "Validate an indexed document version against a case study template",
				Action: validateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "version",
						Aliases:  []string{"v"},
						Usage:    "Document version id to validate",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "template",
						Usage:    "Path to the template configuration JSON",
						Required: true,
					},
				},
			},
			{
				Name:   "generate",
				Usage:  "Generate a case study deck from wizard input",
				Action: generateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "template",
						Usage:    "Path to the template configuration JSON",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Case study title",
						Required: true,
					},
					&cli.StringFlag{Name: "customer", Usage: "Customer name"},
					&cli.StringFlag{Name: "overview", Usage: "Customer overview paragraph"},
					&cli.StringSliceFlag{Name: "challenge", Usage: "Challenge bullet (repeatable)"},
					&cli.StringFlag{Name: "solution", Usage: "Solution paragraph"},
					&cli.StringSliceFlag{Name: "technology", Usage: "Technology tag (repeatable)"},
					&cli.StringSliceFlag{Name: "result", Usage: "Result bullet (repeatable)"},
					&cli.BoolFlag{
						Name:  "enhance",
						Usage: "Rewrite the wizard content with the chat model before rendering",
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List cataloged documents",
				Action: listCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	filePath := c.String("file")
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("cannot read input file: %w", err)
	}

	// Open database
	backend, err := badgerstore.OpenBackend(cfg.Storage.Path, cfg.Storage.InMemory)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()
	catalog := badgerstore.NewCatalogRepository(backend)

	blobs, err := newBlobStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	indexManager, err := newIndexManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer indexManager.Close()

	orchestrator, err := newOrchestrator(cfg, blobs, provider, indexManager, catalog,
		ingestion.WithSummarization(!c.Bool("no-summary")))
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orchestrator.Release()

	// Resolve or create the catalog document
	title := c.String("title")
	var documentID uuid.UUID
	if raw := c.String("document"); raw != "" {
		documentID, err = uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid document id: %w", err)
		}
		if _, err := catalog.GetDocument(ctx, documentID); err != nil {
			return fmt.Errorf("document lookup failed: %w", err)
		}
	} else {
		doc, err := catalog.PutDocument(ctx, &core.Document{
			ID:           uuid.New(),
			Title:        title,
			DocumentType: c.String("doc-type"),
			State:        string(ingestion.StatePending),
		})
		if err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
		documentID = doc.ID
	}

	versions, err := catalog.ListVersions(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to list versions: %w", err)
	}
	versionNumber := len(versions) + 1

	// Upload the blob
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("cannot open input file: %w", err)
	}
	defer file.Close()

	fileName := filepath.Base(filePath)
	blobPath := fmt.Sprintf("documents/%s/%d/%s", documentID, versionNumber, fileName)
	if _, err := blobs.Put(ctx, blobPath, file, c.String("content-type")); err != nil {
		return fmt.Errorf("blob upload failed: %w", err)
	}

	version := core.DocumentVersion{
		ID:            uuid.New(),
		DocumentID:    documentID,
		VersionNumber: versionNumber,
		BlobPath:      blobPath,
		FileName:      fileName,
		ContentType:   c.String("content-type"),
		ByteSize:      info.Size(),
		CreatedAt:     time.Now().UTC(),
	}
	if err := catalog.PutVersion(ctx, &version); err != nil {
		return fmt.Errorf("failed to record version: %w", err)
	}

	facets := core.Facets{
		Domain:       c.String("domain"),
		Industry:     c.String("industry"),
		BusinessUnit: c.String("business-unit"),
		SBU:          c.String("sbu"),
		Technologies: c.StringSlice("technology"),
		CustomerName: c.String("customer"),
		DocumentType: c.String("doc-type"),
		CreatedDate:  version.CreatedAt,
	}

	fmt.Fprintf(os.Stderr, "Document: %s\n", documentID)
	fmt.Fprintf(os.Stderr, "Version: %s (#%d)\n", version.ID, versionNumber)
	fmt.Fprintln(os.Stderr)

	result, err := orchestrator.Index(ctx, version, title, facets)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("document\t%s\n", result.DocumentID)
	fmt.Printf("version\t%s\n", result.VersionID)
	fmt.Printf("chunks\t%d\n", result.ChunkCount)
	fmt.Printf("state\t%s\n", result.State)
	if result.Summary != "" {
		fmt.Printf("summary\t%s\n", result.Summary)
	}
	return nil
}

func purgeCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	documentID, err := uuid.Parse(c.String("document"))
	if err != nil {
		return fmt.Errorf("invalid document id: %w", err)
	}

	backend, err := badgerstore.OpenBackend(cfg.Storage.Path, cfg.Storage.InMemory)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()
	catalog := badgerstore.NewCatalogRepository(backend)

	blobs, err := newBlobStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	indexManager, err := newIndexManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer indexManager.Close()

	orchestrator, err := newOrchestrator(cfg, blobs, provider, indexManager, catalog)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orchestrator.Release()

	if err := orchestrator.Purge(ctx, documentID); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	fmt.Printf("purged\t%s\n", documentID)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	indexManager, err := newIndexManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer indexManager.Close()

	queryText := c.String("query")
	vector, err := provider.Embedder().EmbedText(ctx, queryText)
	if err != nil {
		return fmt.Errorf("query embedding failed: %w", err)
	}

	hits, err := indexManager.HybridSearch(ctx, index.Query{
		Text:   queryText,
		Vector: vector,
		TopK:   c.Int("top-k"),
		Filter: filterFromFlags(c),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(hits) == 0 {
		fmt.Fprintln(os.Stderr, "no results")
		return nil
	}
	for rank, hit := range hits {
		fmt.Printf("%2d. %.4f  %s  (document %s, chunk %d)\n",
			rank+1, hit.Score, hit.Record.Title, hit.Record.DocumentID, hit.Record.ChunkOrdinal)
		fmt.Printf("    %s\n", snippet(hit.Record.Content, 160))
	}
	return nil
}

func validateCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	versionID, err := uuid.Parse(c.String("version"))
	if err != nil {
		return fmt.Errorf("invalid version id: %w", err)
	}

	template, err := loadTemplate(c.String("template"))
	if err != nil {
		return err
	}

	backend, err := badgerstore.OpenBackend(cfg.Storage.Path, cfg.Storage.InMemory)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()
	catalog := badgerstore.NewCatalogRepository(backend)
	results := badgerstore.NewValidationResultRepository(backend)

	blobs, err := newBlobStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	version, err := catalog.GetVersion(ctx, versionID)
	if err != nil {
		return fmt.Errorf("version lookup failed: %w", err)
	}
	reader, err := blobs.Get(ctx, version.BlobPath)
	if err != nil {
		return fmt.Errorf("blob read failed: %w", err)
	}
	defer reader.Close()
	text, err := docpipe.NewExtractor().ExtractText(ctx, reader, version.ContentType)
	if err != nil {
		return fmt.Errorf("text extraction failed: %w", err)
	}

	pipeline, err := casestudy.NewPipeline(provider.ChatModel(), results,
		casestudy.WithAcceptanceThreshold(cfg.Pipeline.AcceptanceThreshold))
	if err != nil {
		return fmt.Errorf("failed to create validation pipeline: %w", err)
	}

	report, err := pipeline.Run(ctx, versionID, text, template)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("score\t%.2f\n", report.Result.Score)
	fmt.Printf("valid\t%t\n", report.Result.Valid)
	for _, issue := range report.Result.Issues {
		fmt.Printf("issue\t%s\t%s\t%s\n", issue.Severity, issue.Section, issue.Message)
	}
	if report.Enhanced != nil {
		fmt.Println("enhanced\ttrue")
	}
	return nil
}

func generateCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	template, err := loadTemplate(c.String("template"))
	if err != nil {
		return err
	}

	backend, err := badgerstore.OpenBackend(cfg.Storage.Path, cfg.Storage.InMemory)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()
	catalog := badgerstore.NewCatalogRepository(backend)

	blobs, err := newBlobStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	generator, err := casestudy.NewGenerator(provider.ChatModel(), rendition.NewBuilder(), blobs, catalog)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	req := casestudy.WizardRequest{
		Title:            c.String("title"),
		CustomerName:     c.String("customer"),
		CustomerOverview: c.String("overview"),
		Challenges:       c.StringSlice("challenge"),
		Solution:         c.String("solution"),
		Technologies:     c.StringSlice("technology"),
		Results:          c.StringSlice("result"),
		EnhanceWithAI:    c.Bool("enhance"),
	}

	result, err := generator.Generate(ctx, req, template)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	fmt.Printf("document\t%s\n", result.DocumentID)
	fmt.Printf("version\t%s\n", result.VersionID)
	fmt.Printf("file\t%s\n", result.FileName)
	fmt.Printf("blob\t%s\n", result.BlobPath)
	fmt.Printf("bytes\t%d\n", result.ByteSize)
	fmt.Printf("enhanced\t%t\n", result.Enhanced)
	return nil
}

func listCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	backend, err := badgerstore.OpenBackend(cfg.Storage.Path, cfg.Storage.InMemory)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()
	catalog := badgerstore.NewCatalogRepository(backend)

	docs, err := catalog.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	for _, doc := range docs {
		fmt.Printf("%s\t%-10s\tindexed=%t\t%s\n", doc.ID, doc.State, doc.Indexed, doc.Title)
	}
	return nil
}

func newBlobStore(cfg *Config) (blob.Store, error) {
	opts := []blob.FSOption{}
	if cfg.Blobs.BaseURL != "" {
		opts = append(opts, blob.WithBaseURL(cfg.Blobs.BaseURL))
	}
	if key := cfg.signingKey(); key != nil {
		opts = append(opts, blob.WithSigningKey(key))
	}
	return blob.NewFSStore(cfg.Blobs.Dir, opts...)
}

func newProvider(cfg *Config) (ai.AIProvider, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
		ai.WithChatHost(cfg.AI.ChatHost),
		ai.WithAPIKey(cfg.apiKey()),
		ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
		ai.WithChatModel(cfg.AI.ChatModel),
		ai.WithEmbeddingDimension(cfg.AI.EmbeddingDimension),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return openai.NewProvider(aiConfig)
}

func newIndexManager(cfg *Config) (index.Manager, error) {
	schema := index.DefaultSchema(cfg.Index.Collection, cfg.AI.EmbeddingDimension)
	switch cfg.Index.Type {
	case "memory":
		return memory.New(schema)
	case "qdrant":
		return qdrant.New(cfg.Index.Addr, schema)
	default:
		return nil, fmt.Errorf("unknown index type %q: must be memory or qdrant", cfg.Index.Type)
	}
}

func newOrchestrator(
	cfg *Config,
	blobs blob.Store,
	provider ai.AIProvider,
	indexManager index.Manager,
	catalog storage.CatalogRepository,
	extra ...ingestion.Option,
) (*ingestion.Orchestrator, error) {
	chunker, err := ingestion.NewChunker(
		ingestion.WithChunkSize(cfg.Pipeline.ChunkSize),
		ingestion.WithChunkOverlap(cfg.Pipeline.ChunkOverlap),
	)
	if err != nil {
		return nil, err
	}

	batcherOpts := []ingestion.BatcherOption{
		ingestion.WithDimension(cfg.AI.EmbeddingDimension),
	}
	if cfg.Pipeline.BatchSize > 0 {
		batcherOpts = append(batcherOpts, ingestion.WithBatchSize(cfg.Pipeline.BatchSize))
	}
	if cfg.Pipeline.Concurrency > 0 {
		batcherOpts = append(batcherOpts, ingestion.WithConcurrency(cfg.Pipeline.Concurrency))
	}
	batcher, err := ingestion.NewBatcher(provider.Embedder(), batcherOpts...)
	if err != nil {
		return nil, err
	}

	opts := []ingestion.Option{
		ingestion.WithChunker(chunker),
		ingestion.WithBatcher(batcher),
	}
	if cfg.Pipeline.Summarize != nil {
		opts = append(opts, ingestion.WithSummarization(*cfg.Pipeline.Summarize))
	}
	opts = append(opts, extra...)

	orchestrator, err := ingestion.NewOrchestrator(blobs, docpipe.NewExtractor(), provider, indexManager, catalog, opts...)
	if err != nil {
		batcher.Release()
		return nil, err
	}
	return orchestrator, nil
}

func loadTemplate(path string) (*core.TemplateConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read template: %w", err)
	}
	template, err := core.ParseTemplateConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}
	return template, nil
}

func filterFromFlags(c *cli.Context) *index.Filter {
	facetFlags := []struct {
		field string
		flag  string
	}{
		{index.FieldDomain, "domain"},
		{index.FieldIndustry, "industry"},
		{index.FieldBusinessUnit, "business-unit"},
		{index.FieldSBU, "sbu"},
		{index.FieldCustomerName, "customer"},
		{index.FieldDocumentType, "doc-type"},
	}

	clauses := []index.Clause{}
	for _, ff := range facetFlags {
		if value := c.String(ff.flag); value != "" {
			clauses = append(clauses, index.Eq(ff.field, value))
		}
	}
	if techs := c.StringSlice("technology"); len(techs) > 0 {
		clauses = append(clauses, index.AnyOf(index.FieldTechnologies, techs...))
	}
	if len(clauses) == 0 {
		return nil
	}
	return index.And(clauses...)
}

func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func setup(c *cli.Context) error {
	if envFile := c.String("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
