package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{name: "default production", cfg: Config{}, enabled: zapcore.InfoLevel, muted: zapcore.DebugLevel},
		{name: "development debug", cfg: Config{Development: true, Level: "debug"}, enabled: zapcore.DebugLevel, muted: zapcore.DebugLevel - 1},
		{name: "warn", cfg: Config{Level: "warn"}, enabled: zapcore.WarnLevel, muted: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			core := l.Desugar().Core()
			assert.True(t, core.Enabled(tt.enabled))
			assert.False(t, core.Enabled(tt.muted))
		})
	}
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}
