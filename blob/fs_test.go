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


package blob

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FSStore {
	t.Helper()
	store, err := NewFSStore(t.TempDir(), WithSigningKey([]byte("test-signing-key")))
	require.NoError(t, err)
	return store
}

func TestFSStore_PutGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	blobURL, err := store.Put(ctx, "documents/doc-1/1/report.txt", strings.NewReader("hello world"), "text/plain")
	require.NoError(t, err)
	assert.Contains(t, blobURL, "documents/doc-1/1/report.txt")

	rc, err := store.Get(ctx, "documents/doc-1/1/report.txt")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	ctype, err := store.ContentType(ctx, "documents/doc-1/1/report.txt")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", ctype)
}

func TestFSStore_PutOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "a/b.txt", strings.NewReader("first"), "text/plain")
	require.NoError(t, err)
	_, err = store.Put(ctx, "a/b.txt", strings.NewReader("second"), "text/plain")
	require.NoError(t, err)

	rc, err := store.Get(ctx, "a/b.txt")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestFSStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "no/such/blob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "x/y.txt", strings.NewReader("data"), "text/plain")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "x/y.txt"))

	exists, err := store.Exists(ctx, "x/y.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(ctx, "x/y.txt"))
}

func TestFSStore_Exists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "nothing-here")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Put(ctx, "present.txt", strings.NewReader("x"), "")
	require.NoError(t, err)

	exists, err = store.Exists(ctx, "present.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFSStore_RejectsInvalidPaths(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"parent escape", "../outside.txt"},
		{"nested escape", "a/../../outside.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Put(ctx, tt.path, strings.NewReader("x"), "")
			assert.ErrorIs(t, err, ErrInvalidPath)
		})
	}
}

func TestFSStore_SignedURL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "docs/signed.txt", strings.NewReader("x"), "text/plain")
	require.NoError(t, err)

	signed, err := store.SignedURL(ctx, "docs/signed.txt", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)

	expires, err := strconv.ParseInt(u.Query().Get("expires"), 10, 64)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)

	assert.True(t, store.VerifySignedURL("docs/signed.txt", expires, token))
	assert.False(t, store.VerifySignedURL("docs/other.txt", expires, token))
	assert.False(t, store.VerifySignedURL("docs/signed.txt", expires, "forged"))
	assert.False(t, store.VerifySignedURL("docs/signed.txt", time.Now().Add(-time.Minute).Unix(), token))
}

func TestFSStore_SignedURLMissingBlob(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SignedURL(context.Background(), "missing.txt", time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)
}
