package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitLoggerJSON(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() {
		mu.Lock()
		globalLogger = prev
		mu.Unlock()
	})

	var buf bytes.Buffer
	InitLogger("info", "json", zapcore.AddSync(&buf))

	GetLogger().With("component", "capture").Info("capture started", "interval", "1.5s")
	GetLogger().Debug("filtered out")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "capture started", entry["msg"])
	assert.Equal(t, "capture", entry["component"])
	assert.Equal(t, "1.5s", entry["interval"])
}

func TestInitLoggerLevelIsCaseInsensitive(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() {
		mu.Lock()
		globalLogger = prev
		mu.Unlock()
	})

	var buf bytes.Buffer
	InitLogger("WARN", "json", zapcore.AddSync(&buf))
	GetLogger().Info("dropped")
	GetLogger().Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestOrDefault(t *testing.T) {
	assert.Same(t, GetLogger(), OrDefault(nil))

	nop := Nop()
	assert.Same(t, nop, OrDefault(nop))
}
