package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	prod, err := New(false)
	require.NoError(t, err)
	assert.False(t, prod.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, prod.Desugar().Core().Enabled(zapcore.WarnLevel))

	dev, err := New(true)
	require.NoError(t, err)
	assert.True(t, dev.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestInitLoggerReplacesGlobal(t *testing.T) {
	old := Logger
	t.Cleanup(func() { Logger = old })

	require.NoError(t, InitLogger(false))
	assert.NotSame(t, old, Logger)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l, err := New(false)
	require.NoError(t, err)
	assert.Same(t, l, OrNop(l))
}
