// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewWithWriters_Levels(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{name: "info level hides debug", debug: false, wantDebug: false},
		{name: "debug level shows debug", debug: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriters(tt.debug, &buf)
			l.Debug("debug line", zap.String("k", "v"))
			l.Info("info line")
			_ = l.Sync()

			out := buf.String()
			assert.Contains(t, out, "info line")
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")))
		})
	}
}

func TestNewWithWriters_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	l := NewWithWriters(false, &a, &b)
	l.Warn("stored", zap.Int("count", 2))
	_ = l.Sync()

	assert.Contains(t, a.String(), "stored")
	assert.Contains(t, b.String(), "stored")
	assert.Contains(t, a.String(), "WARN")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
