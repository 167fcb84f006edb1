package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-rbac/internal/config"
)

func TestNew_ProdWritesJSONWithDefaultAttrs(t *testing.T) {
	var buf bytes.Buffer
	lgr := newWithWriter(&buf, envProd, config.LogConfig{Level: "info"})

	lgr.Info("started", slog.String("op", "main"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "started", rec["msg"])
	assert.Equal(t, "auth-rbac", rec["service"])
	assert.Equal(t, "prod", rec["env"])
	assert.Equal(t, "main", rec["op"])
}

func TestNew_LocalDefaultsToTextAndDebug(t *testing.T) {
	var buf bytes.Buffer
	lgr := newWithWriter(&buf, envLocal, config.LogConfig{})

	lgr.Debug("visible")

	out := buf.String()
	assert.True(t, strings.Contains(out, "msg=visible"), out)
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	lgr := newWithWriter(&buf, envDev, config.LogConfig{Level: "warn", Format: "json"})

	lgr.Info("dropped")
	assert.Empty(t, buf.String())

	lgr.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
