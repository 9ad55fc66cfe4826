package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "json")
	l.WithField("isbn", "978-1").Info("book updated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "book updated", entry["msg"])
	assert.Equal(t, "978-1", entry["isbn"])
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	l := New(&bytes.Buffer{}, "loud", "text")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}
