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
	"errors"
	"fmt"
)

var (
	// ErrChatModelRequired indicates a nil chat model was provided.
	ErrChatModelRequired = errors.New("chat model is required")

	// ErrResultStoreRequired indicates a nil validation result repository.
	ErrResultStoreRequired = errors.New("validation result repository is required")

	// ErrTemplateRequired indicates a nil or empty template config.
	ErrTemplateRequired = errors.New("template config is required")

	// ErrContentParse indicates the model response was not the strict JSON
	// the stage contract demands: malformed JSON, unexpected keys, or values
	// of the wrong shape.
	ErrContentParse = errors.New("content parse failure")

	// ErrKeySetMismatch indicates an enhanced content map whose key set
	// differs from the input key set.
	ErrKeySetMismatch = errors.New("section key set mismatch")

	// ErrInvalidThreshold indicates an acceptance threshold outside [0, 1].
	ErrInvalidThreshold = errors.New("acceptance threshold out of range")

	// ErrBlobStoreRequired indicates a nil blob store was provided.
	ErrBlobStoreRequired = errors.New("blob store is required")

	// ErrCatalogRequired indicates a nil catalog repository was provided.
	ErrCatalogRequired = errors.New("catalog repository is required")

	// ErrTitleRequired indicates a wizard request without a title.
	ErrTitleRequired = errors.New("case study title is required")
)

// Stage identifies which content-pipeline stage produced an error.
type Stage string

const (
	StageExtract  Stage = "extract"
	StageValidate Stage = "validate"
	StageEnhance  Stage = "enhance"
)

// StageError carries the failed pipeline stage alongside the cause.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage extracts the stage name from an error produced by the pipeline.
func FailedStage(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return "", false
}

func stageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
