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


// Package blob defines the blob storage contract consumed by the ingestion
// and case-study pipelines, plus a filesystem-backed implementation for
// local deployments and tests.
package blob

import (
	"context"
	"io"
	"time"
)

// Store provides access to stored document bytes.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// Get opens the blob at path for reading.
	// The caller must close the returned reader.
	// Returns ErrNotFound if no blob exists at path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Put stores the bytes at path with the given content type, replacing
	// any existing blob, and returns the blob's URL.
	Put(ctx context.Context, path string, data io.Reader, contentType string) (string, error)

	// Delete removes the blob at path. Deleting a missing blob is a no-op.
	Delete(ctx context.Context, path string) error

	// Exists reports whether a blob is stored at path.
	Exists(ctx context.Context, path string) (bool, error)

	// SignedURL returns a URL granting read access to the blob for the
	// given validity window.
	SignedURL(ctx context.Context, path string, validity time.Duration) (string, error)
}
