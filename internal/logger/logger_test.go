package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestConfigForStage(t *testing.T) {
	tests := []struct {
		name  string
		stage string
		env   map[string]string
		want  LoggerConfig
	}{
		{
			name:  "prod",
			stage: "prod",
			want:  LoggerConfig{Level: "info", Stage: "prod", EnableJSON: true},
		},
		{
			name:  "dev",
			stage: "dev",
			want:  LoggerConfig{Level: "info", Stage: "dev", EnableJSON: true},
		},
		{
			name:  "local",
			stage: "local",
			want:  LoggerConfig{Level: "info", Stage: "local", EnableColor: true},
		},
		{
			name:  "local inside lambda",
			stage: "local",
			env:   map[string]string{"AWS_LAMBDA_FUNCTION_NAME": "wallet-policy"},
			want:  LoggerConfig{Level: "info", Stage: "local", EnableJSON: true},
		},
		{
			name:  "test is quiet",
			stage: "test",
			want:  LoggerConfig{Level: "warn", Stage: "test"},
		},
		{
			name:  "LOG_LEVEL wins",
			stage: "test",
			env:   map[string]string{"LOG_LEVEL": "debug"},
			want:  LoggerConfig{Level: "debug", Stage: "test"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigForStage(tt.stage, envOf(tt.env)))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestForComponent(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	core, logs := observer.New(zapcore.InfoLevel)
	Log = zap.New(core)

	ForComponent(ComponentMultisig).Info("Proposal executed")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "multisig", entries[0].ContextMap()["component"])
}

func TestSetLevel(t *testing.T) {
	prevLog, prevLevel := Log, level.Level()
	t.Cleanup(func() {
		Log = prevLog
		level.SetLevel(prevLevel)
	})

	InitLoggerWithConfig(LoggerConfig{Level: "info", Stage: "test"})
	child := ForComponent(ComponentDispatch)
	assert.False(t, child.Core().Enabled(zapcore.DebugLevel))

	SetLevel("debug")
	assert.True(t, child.Core().Enabled(zapcore.DebugLevel))
}
