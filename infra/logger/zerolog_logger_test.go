package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	return &buf
}

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	buf := captureOutput(t)
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	l := NewZerologLogger("test")
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
	assert.Equal(t, 5, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "info test")
}

func TestZerologLoggerJSONFields(t *testing.T) {
	buf := captureOutput(t)
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	l := NewZerologLogger("scheduler").(*ZerologLogger).With("run_id", "r1")
	l.Infof("scheduled %s", "little / 1")
	l.Debugf("filtered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "scheduler", entry["component"])
	assert.Equal(t, "r1", entry["run_id"])
	assert.Equal(t, "scheduled little / 1", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestSetLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)
	assert.NoError(t, SetLevel("WARN"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	assert.NoError(t, SetLevel(""))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.Error(t, SetLevel("loud"))

	var l Logger = NopLogger{}
	l.Infof("ignored")
}
