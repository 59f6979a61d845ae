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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocumentVersion indicates a DocumentVersion failed validation.
	ErrInvalidDocumentVersion = errors.New("invalid document version")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidSearchRecord indicates a SearchRecord failed validation.
	ErrInvalidSearchRecord = errors.New("invalid search record")

	// ErrInvalidTemplateConfig indicates a TemplateConfig failed validation.
	ErrInvalidTemplateConfig = errors.New("invalid template config")

	// ErrNoSections indicates a template config defines no sections.
	ErrNoSections = errors.New("template defines no sections")

	// ErrEmptyContent indicates a content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrScoreOutOfRange indicates a validation score outside [0.0, 1.0].
	ErrScoreOutOfRange = errors.New("validation score out of range")

	// ErrUnknownSection indicates a reference to a section key the template
	// does not define.
	ErrUnknownSection = errors.New("unknown section key")
)
