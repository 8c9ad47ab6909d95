package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/mercato/internal/config"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("json honors level", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.LogLevel = "warn"
		var buf bytes.Buffer
		logger := NewLogger(&buf, false, cfg)
		logger.Info("hidden")
		logger.Warn("shown", "suite", "settings")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "shown", record["msg"])
		assert.Equal(t, "settings", record["suite"])
		assert.NotContains(t, record, "source")
	})

	t.Run("text with source in dev mode", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.DevMode = true
		cfg.LogLevel = "nonsense"
		var buf bytes.Buffer
		NewLogger(&buf, true, cfg).Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
		assert.Contains(t, buf.String(), "source=")
	})
}
