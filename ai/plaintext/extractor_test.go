package plaintext

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	ctx := context.Background()
	extractor := NewExtractor()

	t.Run("plain text", func(t *testing.T) {
		text, err := extractor.ExtractText(ctx, strings.NewReader("hello world"), "text/plain")
		require.NoError(t, err)
		assert.Equal(t, "hello world", text)
	})

	t.Run("content type with charset", func(t *testing.T) {
		text, err := extractor.ExtractText(ctx, strings.NewReader("abc"), "text/plain; charset=utf-8")
		require.NoError(t, err)
		assert.Equal(t, "abc", text)
	})

	t.Run("markdown", func(t *testing.T) {
		text, err := extractor.ExtractText(ctx, strings.NewReader("# Title\n\nbody"), "text/markdown")
		require.NoError(t, err)
		assert.Equal(t, "# Title\n\nbody", text)
	})

	t.Run("control characters scrubbed", func(t *testing.T) {
		text, err := extractor.ExtractText(ctx, strings.NewReader("a\x00b\tc\nd"), "text/plain")
		require.NoError(t, err)
		assert.Equal(t, "ab\tc\nd", text)
	})

	t.Run("unsupported content type", func(t *testing.T) {
		_, err := extractor.ExtractText(ctx, strings.NewReader("%PDF-1.4"), "application/pdf")
		assert.ErrorIs(t, err, ErrUnsupportedContentType)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		_, err := extractor.ExtractText(ctx, strings.NewReader("\xff\xfe"), "text/plain")
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})
}
