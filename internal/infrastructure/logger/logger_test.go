package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_FileSink(t *testing.T) {
	file := filepath.Join(t.TempDir(), "usercrud.log")

	l := New("warn", file)
	l.Info("dropped below level")
	l.Warn("kept")
	_ = l.Sync()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"kept"`)
	assert.NotContains(t, string(b), "dropped below level")
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	l := New("loud", "")
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
