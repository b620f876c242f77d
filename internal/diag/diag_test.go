package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorder_Warnings(t *testing.T) {
	var r Recorder
	r.Debug("found", "name", "lodash")
	r.Warn("cannot read manifest", "path", "/x/package.json")
	r.Info("done")

	warnings := r.Warnings()
	assert.Len(t, warnings, 1)
	assert.Equal(t, "cannot read manifest path=/x/package.json", warnings[0].String())
	assert.Len(t, r.Entries, 3)
}

func TestLogger_DebugGatedByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, false)
	l.Debug("hidden")
	l.Warn("visible", "key", "value")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "key=value")

	buf.Reset()
	NewLogger(&buf, true).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_NoDoubledTag(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false).Warn("[license] sourceMap has been deprecated")
	out := buf.String()
	assert.Contains(t, out, "[license] sourceMap")
	assert.NotContains(t, out, "license: [license]")
	assert.Equal(t, 1, strings.Count(out, "license"))
}
