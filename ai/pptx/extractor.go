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


// Package pptx provides an ai.TextExtractor for PowerPoint decks. It walks
// the slide parts of the OOXML archive in slide order and collects paragraph
// text, which is what the case study validation pipeline consumes.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/poiesic/docpipe/ai"
)

// ErrUnsupportedContentType indicates the extractor cannot handle the format.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// ErrCorruptArchive indicates the document is not a readable OOXML archive.
var ErrCorruptArchive = errors.New("corrupt presentation archive")

var supportedTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

var slideName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Extractor implements ai.TextExtractor for .pptx documents.
type Extractor struct{}

// NewExtractor creates a presentation text extractor.
//
// Returns ai.TextExtractor interface to enforce abstraction.
func NewExtractor() ai.TextExtractor {
	return &Extractor{}
}

// ExtractText returns the deck's text, one line per paragraph, slides
// separated by blank lines and ordered by slide number.
func (e *Extractor) ExtractText(ctx context.Context, document io.Reader, contentType string) (string, error) {
	base := contentType
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(strings.ToLower(base))

	if !supportedTypes[base] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	data, err := io.ReadAll(document)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	type slidePart struct {
		number int
		file   *zip.File
	}
	slides := make([]slidePart, 0, len(archive.File))
	for _, file := range archive.File {
		match := slideName.FindStringSubmatch(file.Name)
		if match == nil {
			continue
		}
		number, convErr := strconv.Atoi(match[1])
		if convErr != nil {
			continue
		}
		slides = append(slides, slidePart{number: number, file: file})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	var out strings.Builder
	for _, slide := range slides {
		paragraphs, slideErr := slideParagraphs(slide.file)
		if slideErr != nil {
			return "", fmt.Errorf("%w: slide %d: %v", ErrCorruptArchive, slide.number, slideErr)
		}
		for _, paragraph := range paragraphs {
			out.WriteString(paragraph)
			out.WriteByte('\n')
		}
		if len(paragraphs) > 0 {
			out.WriteByte('\n')
		}
	}
	return strings.TrimRight(out.String(), "\n"), nil
}

// slideParagraphs streams one slide part and joins the runs of each
// DrawingML paragraph (a:p) into a single line.
func slideParagraphs(file *zip.File) ([]string, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	decoder := xml.NewDecoder(reader)
	paragraphs := []string{}
	var current strings.Builder
	inParagraph := false
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch element := token.(type) {
		case xml.StartElement:
			switch element.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch element.Name.Local {
			case "p":
				if inParagraph {
					if text := strings.TrimSpace(current.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
				}
				inParagraph = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inParagraph && inText {
				current.Write(element)
			}
		}
	}
	return paragraphs, nil
}
