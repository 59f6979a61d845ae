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
	"encoding/json"
	"fmt"

	"github.com/poiesic/docpipe/core"
)

// parseContent decodes a model response into an ExtractedContent map,
// enforcing the strict key contract: the response may only use keys from the
// requested set, string values become text sections, arrays become list
// sections, and null marks an absent section. Every requested key appears in
// the result even when the response omitted it.
func parseContent(raw string, keys []string) (core.ExtractedContent, error) {
	cleaned := cleanResponse(raw)

	var fields map[string]json.RawMessage
	decoder := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	decoder.UseNumber()
	if err := decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContentParse, err)
	}

	requested := make(map[string]bool, len(keys))
	for _, key := range keys {
		requested[key] = true
	}
	for key := range fields {
		if !requested[key] {
			return nil, fmt.Errorf("%w: unexpected key %q", ErrContentParse, key)
		}
	}

	content := make(core.ExtractedContent, len(keys))
	for _, key := range keys {
		value, ok := fields[key]
		if !ok {
			content[key] = core.AbsentValue()
			continue
		}
		parsed, err := parseSectionValue(key, value)
		if err != nil {
			return nil, err
		}
		content[key] = parsed
	}
	return content, nil
}

// parseSectionValue maps one JSON value to a SectionValue. Only null, string
// and array-of-string are legal shapes.
func parseSectionValue(key string, raw json.RawMessage) (core.SectionValue, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return core.AbsentValue(), nil
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return core.SectionValue{}, fmt.Errorf("%w: section %q: %w", ErrContentParse, key, err)
		}
		return core.TextValue(text), nil
	case '[':
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return core.SectionValue{}, fmt.Errorf("%w: section %q must be a list of strings: %w", ErrContentParse, key, err)
		}
		return core.ListValue(items...), nil
	}
	return core.SectionValue{}, fmt.Errorf("%w: section %q has unsupported value shape", ErrContentParse, key)
}

// marshalContent serializes a content map for prompt embedding. Absent
// sections serialize as explicit null so the model sees every key.
func marshalContent(content core.ExtractedContent) (string, error) {
	fields := make(map[string]any, len(content))
	for key, value := range content {
		switch value.Kind {
		case core.SectionValueText:
			fields[key] = value.Text
		case core.SectionValueList:
			fields[key] = value.Items
		default:
			fields[key] = nil
		}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContentParse, err)
	}
	return string(data), nil
}
