package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Infow("info", map[string]any{"k": "v"})
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerComponentField(t *testing.T) {
	assert.NoError(t, os.Unsetenv("LOG_LEVEL"))
	var buf bytes.Buffer
	l := NewZerologLoggerWithWriter("orchestrator", &buf)
	l.Infow("brief ready", map[string]any{"generation": 3})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "orchestrator", rec["component"])
	assert.Equal(t, "brief ready", rec["message"])
	assert.EqualValues(t, 3, rec["generation"])
}

func TestZerologLoggerLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	var buf bytes.Buffer
	l := NewZerologLoggerWithWriter("test", &buf)
	l.Infof("hidden")
	assert.Zero(t, buf.Len())
	l.Warnf("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetFileOutput(t *testing.T) {
	assert.NoError(t, os.Unsetenv("LOG_LEVEL"))
	t.Setenv("APP_ENV", "")
	path := filepath.Join(t.TempDir(), "logs", "gridpulse.log")
	closeFn, err := SetFileOutput(FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)

	NewZerologLogger("price").Infof("probe failed, simulating")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"price"`)
	assert.Contains(t, string(data), "probe failed, simulating")
	assert.Equal(t, os.Stdout, currentOutput())
}
