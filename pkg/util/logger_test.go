package util

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerTo_Production(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "production")

	logger.Debug("hidden")
	logger.Info("question created", "slug", "adonis-101")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "question created", entry["msg"])
	assert.Equal(t, "adonis-101", entry["slug"])
	assert.Equal(t, "rally", entry["service"])
}

func TestNewLoggerTo_Development(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "development")

	logger.Debug("visible", "key", "value")

	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "key=value")
}
