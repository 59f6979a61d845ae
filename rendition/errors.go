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


package rendition

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncompleteContent indicates required sections without content.
	ErrIncompleteContent = errors.New("required section content missing")

	// ErrRenditionFailed indicates the artifact could not be produced.
	ErrRenditionFailed = errors.New("rendition failed")
)

// CompletenessError lists every required section the content map left absent.
// It is reported per section rather than failing on the first miss, so
// callers can surface the full gap list at once.
type CompletenessError struct {
	Sections []string
}

func (e *CompletenessError) Error() string {
	return fmt.Sprintf("%v: %s", ErrIncompleteContent, strings.Join(e.Sections, ", "))
}

func (e *CompletenessError) Unwrap() error {
	return ErrIncompleteContent
}
