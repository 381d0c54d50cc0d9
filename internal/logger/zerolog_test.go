package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal(line, &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestZerologAdapterFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.DebugLevel).WithSession("abc")

	log.Info("Workflow", "apk selected", map[string]interface{}{"path": "/tmp/app.apk"})
	log.Error("Workspace", errors.New("disk full"), nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "Workflow", entries[0]["component"])
	assert.Equal(t, "apk selected", entries[0]["message"])
	assert.Equal(t, "/tmp/app.apk", entries[0]["path"])
	assert.Equal(t, "abc", entries[0]["session"])

	assert.Equal(t, "error", entries[1]["level"])
	assert.Equal(t, "disk full", entries[1]["error"])
}

func TestZerologAdapterLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.WarnLevel)

	log.Debug("Workflow", "hidden", nil)
	log.Info("Workflow", "hidden", nil)
	log.Warning("Workflow", "shown", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["message"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		debug bool
		want  zerolog.Level
	}{
		{"debug", false, zerolog.DebugLevel},
		{"INFO", false, zerolog.InfoLevel},
		{"warn", false, zerolog.WarnLevel},
		{"warning", false, zerolog.WarnLevel},
		{" error ", false, zerolog.ErrorLevel},
		{"", false, zerolog.InfoLevel},
		{"", true, zerolog.DebugLevel},
		{"bogus", true, zerolog.DebugLevel},
		{"error", true, zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.name, tt.debug), "name=%q debug=%v", tt.name, tt.debug)
	}
}
