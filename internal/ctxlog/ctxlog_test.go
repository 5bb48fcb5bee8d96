package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("returns the attached logger", func(t *testing.T) {
		// --- Arrange ---
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		ctx := WithLogger(context.Background(), logger)

		// --- Act ---
		FromContext(ctx).Info("hello", "k", 1)

		// --- Assert ---
		assert.Contains(t, buf.String(), "msg=hello")
		assert.Contains(t, buf.String(), "k=1")
	})

	t.Run("falls back to the default logger", func(t *testing.T) {
		require.Same(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("discard logger is not the default", func(t *testing.T) {
		ctx := Discard(context.Background())
		assert.NotSame(t, slog.Default(), FromContext(ctx))
	})
}
