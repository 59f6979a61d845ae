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
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FSStore implements Store on the local filesystem. Blobs live under a root
// directory; content types are kept in sidecar files so Get round-trips the
// metadata Put received. Signed URLs are file URLs carrying an HMAC token;
// they serve local single-node deployments, not a CDN.
type FSStore struct {
	root    string
	signKey []byte
	baseURL string
	logger  *slog.Logger
}

// FSOption configures an FSStore.
type FSOption func(*FSStore)

// WithSigningKey sets the HMAC key used for signed URLs.
// A random key is generated when none is provided.
func WithSigningKey(key []byte) FSOption {
	return func(s *FSStore) {
		s.signKey = key
	}
}

// WithBaseURL sets the URL prefix returned by Put and SignedURL.
// Default is "file://<root>".
func WithBaseURL(base string) FSOption {
	return func(s *FSStore) {
		s.baseURL = strings.TrimSuffix(base, "/")
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) FSOption {
	return func(s *FSStore) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewFSStore creates a filesystem blob store rooted at dir.
// The directory is created if it does not exist.
func NewFSStore(dir string, opts ...FSOption) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &FSStore{
		root:    dir,
		baseURL: "file://" + dir,
		logger:  slog.Default().With("component", "fs-blob-store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.signKey) == 0 {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		s.signKey = key
	}

	return s, nil
}

// Get opens the blob at path for reading.
func (s *FSStore) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	return f, nil
}

// Put stores the bytes at path, creating parent directories as needed.
func (s *FSStore) Put(ctx context.Context, path string, data io.Reader, contentType string) (string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(full)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if contentType != "" {
		if err := os.WriteFile(full+".ctype", []byte(contentType), 0o644); err != nil {
			return "", err
		}
	}

	s.logger.Debug("blob stored", "path", path, "contentType", contentType)
	return s.baseURL + "/" + path, nil
}

// Delete removes the blob at path. Missing blobs are a no-op.
func (s *FSStore) Delete(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(full + ".ctype"); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether a blob is stored at path.
func (s *FSStore) Exists(ctx context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ContentType returns the content type recorded for the blob, if any.
func (s *FSStore) ContentType(ctx context.Context, path string) (string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full + ".ctype")
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// SignedURL returns a URL with an expiry and HMAC token for the blob.
func (s *FSStore) SignedURL(ctx context.Context, path string, validity time.Duration) (string, error) {
	if _, err := s.resolve(path); err != nil {
		return "", err
	}
	exists, err := s.Exists(ctx, path)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	expires := time.Now().Add(validity).Unix()
	token := s.sign(path, expires)
	q := url.Values{}
	q.Set("expires", fmt.Sprintf("%d", expires))
	q.Set("token", token)
	return fmt.Sprintf("%s/%s?%s", s.baseURL, path, q.Encode()), nil
}

// VerifySignedURL checks a token produced by SignedURL.
func (s *FSStore) VerifySignedURL(path string, expires int64, token string) bool {
	if time.Now().Unix() > expires {
		return false
	}
	expected := s.sign(path, expires)
	return hmac.Equal([]byte(expected), []byte(token))
}

func (s *FSStore) sign(path string, expires int64) string {
	mac := hmac.New(sha256.New, s.signKey)
	fmt.Fprintf(mac, "%s:%d", path, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// resolve maps a blob path onto the store root, rejecting escapes.
func (s *FSStore) resolve(path string) (string, error) {
	if path == "" {
		return "", ErrInvalidPath
	}
	clean := filepath.Clean("/" + path)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return filepath.Join(s.root, clean), nil
}
