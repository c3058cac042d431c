package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", &buf).Named("store")

	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "[store]")
}

func TestNewFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New("chatty", &buf)

	logger.Debug("debug line")
	logger.Info("info line")
	_ = logger.Sync()

	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}

func TestNewTUISendsOnlyErrorsToTerminal(t *testing.T) {
	var file, term bytes.Buffer
	logger := NewTUI("debug", &file, &term)

	logger.Debug("loaded 3 cases")
	logger.Error("store unavailable")
	_ = logger.Sync()

	assert.Contains(t, file.String(), "loaded 3 cases")
	assert.Contains(t, file.String(), "store unavailable")
	assert.NotContains(t, term.String(), "loaded 3 cases")
	assert.Contains(t, term.String(), "store unavailable")
}
