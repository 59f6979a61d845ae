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


package casestudy

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/blob"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/rendition"
	"github.com/poiesic/docpipe/storage"
)

// PptxContentType is the MIME type of the generated deck.
const PptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// CaseStudyDocumentType tags catalog entries created by the generator.
const CaseStudyDocumentType = "CASE_STUDY"

// WizardRequest carries the user-supplied fields for a generated case study.
type WizardRequest struct {
	Title            string
	CustomerName     string
	CustomerOverview string
	Challenges       []string
	Solution         string
	Technologies     []string
	Results          []string
	EnhanceWithAI    bool
}

// Generator turns wizard input into a stored case-study document: the
// content map is optionally enhanced, rendered to a deck, uploaded to blob
// storage, and recorded in the catalog as version 1 of a new document.
type Generator struct {
	enhancer *Enhancer
	builder  *rendition.Builder
	blobs    blob.Store
	catalog  storage.CatalogRepository
	logger   *slog.Logger
}

// NewGenerator creates a case-study generator. A nil builder gets the
// default rendition builder.
func NewGenerator(chat ai.ChatModel, builder *rendition.Builder, blobs blob.Store, catalog storage.CatalogRepository) (*Generator, error) {
	if blobs == nil {
		return nil, ErrBlobStoreRequired
	}
	if catalog == nil {
		return nil, ErrCatalogRequired
	}
	enhancer, err := NewEnhancer(chat)
	if err != nil {
		return nil, err
	}
	if builder == nil {
		builder = rendition.NewBuilder()
	}
	return &Generator{
		enhancer: enhancer,
		builder:  builder,
		blobs:    blobs,
		catalog:  catalog,
		logger:   slog.Default().With("component", "casestudy-generator"),
	}, nil
}

// GenerateResult identifies the stored document produced from wizard input.
type GenerateResult struct {
	DocumentID uuid.UUID
	VersionID  uuid.UUID
	BlobPath   string
	FileName   string
	ByteSize   int64
	Enhanced   bool
}

// Generate builds and stores a case study from wizard input. Enhancement
// failures fall back to the original content; rendition and storage failures
// abort the run.
func (g *Generator) Generate(ctx context.Context, req WizardRequest, template *core.TemplateConfig) (*GenerateResult, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if template == nil {
		return nil, ErrTemplateRequired
	}

	logger := g.logger.With("title", req.Title)
	content := contentFromWizard(req)

	enhanced := false
	if req.EnhanceWithAI {
		rewritten, err := g.enhancer.Enhance(ctx, content)
		if err != nil {
			logger.Warn("enhancement failed, using original content", "err", err)
		} else {
			content = rewritten
			enhanced = true
		}
	}

	deck, err := g.builder.Build(template, content)
	if err != nil {
		return nil, err
	}

	doc, err := g.catalog.PutDocument(ctx, &core.Document{
		Title:        req.Title,
		DocumentType: CaseStudyDocumentType,
	})
	if err != nil {
		return nil, err
	}

	fileName := sanitizeFileName(req.Title) + ".pptx"
	blobPath := fmt.Sprintf("documents/%s/1/%s", doc.ID, fileName)
	if _, err := g.blobs.Put(ctx, blobPath, bytes.NewReader(deck), PptxContentType); err != nil {
		return nil, err
	}

	version := &core.DocumentVersion{
		ID:            uuid.New(),
		DocumentID:    doc.ID,
		VersionNumber: 1,
		BlobPath:      blobPath,
		FileName:      fileName,
		ContentType:   PptxContentType,
		ByteSize:      int64(len(deck)),
		CreatedAt:     time.Now().UTC(),
	}
	if err := g.catalog.PutVersion(ctx, version); err != nil {
		return nil, err
	}

	logger.Info("case study generated",
		"documentID", doc.ID, "versionID", version.ID, "bytes", len(deck), "enhanced", enhanced)
	return &GenerateResult{
		DocumentID: doc.ID,
		VersionID:  version.ID,
		BlobPath:   blobPath,
		FileName:   fileName,
		ByteSize:   int64(len(deck)),
		Enhanced:   enhanced,
	}, nil
}

// contentFromWizard maps wizard fields to the canonical section keys.
func contentFromWizard(req WizardRequest) core.ExtractedContent {
	content := core.ExtractedContent{
		"title":            core.TextValue(req.Title),
		"customerOverview": core.TextValue(req.CustomerOverview),
		"challenges":       core.ListValue(req.Challenges...),
		"solution":         core.TextValue(req.Solution),
		"results":          core.ListValue(req.Results...),
	}
	if req.Technologies != nil {
		content["technologies"] = core.ListValue(req.Technologies...)
	}
	return content
}

// sanitizeFileName reduces a title to a safe lowercase file stem.
func sanitizeFileName(title string) string {
	var stem strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			stem.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			stem.WriteRune(r + ('a' - 'A'))
		case r == ' ', r == '\t':
			stem.WriteRune(' ')
		}
	}
	return strings.ReplaceAll(strings.Join(strings.Fields(stem.String()), " "), " ", "_")
}
