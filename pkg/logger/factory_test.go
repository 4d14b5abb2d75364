package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knugget/coordinator/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json format by default", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf))
		log.Info("hello", slog.String("k", "v"))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "hello", record["msg"])
		assert.Equal(t, "v", record["k"])
	})

	t.Run("static attributes on every record", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "coordinator")),
		)
		log.Info("one")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "coordinator", record["service"])
	})

	t.Run("level filtering", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		assert.Empty(t, buf.Bytes())
		log.Warn("kept")
		assert.NotEmpty(t, buf.Bytes())
	})

	t.Run("development preset uses text format", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithDevelopment("coordinator"))
		log.Debug("verbose")
		assert.Contains(t, buf.String(), "service=coordinator")
		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			logger.New(logger.WithFormat("xml"))
		})
	})
}

type ctxKey struct{}

func TestContextExtraction(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
			if v, ok := ctx.Value(ctxKey{}).(string); ok {
				return slog.String("origin", v), true
			}
			return slog.Attr{}, false
		}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "https://app.example.com")
	log.InfoContext(ctx, "gated")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "https://app.example.com", record["origin"])

	buf.Reset()
	log.Info("no context value")
	record = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, "origin")
}

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	assert.Equal(t, "error", logger.Error(assert.AnError).Key)
	assert.Equal(t, "component", logger.Component("saves").Key)
	assert.Equal(t, "record_id", logger.RecordID("abc").Key)
	assert.Equal(t, "message_type", logger.MessageType("SAVE_CONTENT").Key)
}
