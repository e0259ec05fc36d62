package helper

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrettyHandler(t *testing.T) {
	t.Run("Create PrettyHandler with default options", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		require.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
		assert.NotNil(t, handler.Handler, "Expected handler to wrap a slog handler")
		assert.NotNil(t, handler.l, "Expected handler to have a logger")
	})

	t.Run("Level from options is respected", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{Level: slog.LevelWarn},
		})

		assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo), "Expected INFO to be disabled")
		assert.True(t, handler.Enabled(context.Background(), slog.LevelError), "Expected ERROR to be enabled")
	})
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	levels := []struct {
		level slog.Level
		label string
	}{
		{slog.LevelDebug, "DEBUG:"},
		{slog.LevelInfo, "INFO:"},
		{slog.LevelWarn, "WARN:"},
		{slog.LevelError, "ERROR:"},
	}
	for _, l := range levels {
		t.Run("Handle "+l.label+" record", func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewPrettyHandler(&buf, PrettyHandlerOptions{
				SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug},
			})

			record := slog.NewRecord(time.Now(), l.level, "update queued", 0)
			record.AddAttrs(slog.String("entity_id", "Q42"), slog.Int("revision", 7))

			err := handler.Handle(ctx, record)
			require.NoError(t, err)

			output := buf.String()
			assert.Contains(t, output, l.label)
			assert.Contains(t, output, "update queued")
			assert.Contains(t, output, "Q42")
			assert.Contains(t, output, "7")
			assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, output, "Expected timestamp in brackets")
		})
	}

	t.Run("Record without attributes prints empty object", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		err := handler.Handle(ctx, slog.NewRecord(time.Now(), slog.LevelInfo, "plain", 0))
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "{}")
	})

	t.Run("Attributes from WithAttrs are printed", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, PrettyHandlerOptions{})).With(slog.String("component", "updater"))

		logger.Info("stored revision")

		assert.Contains(t, buf.String(), "component")
		assert.Contains(t, buf.String(), "updater")
	})
}
