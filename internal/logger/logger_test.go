package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		" warn ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestConfig(t *testing.T) {
	prod := Config("warn", "json")
	assert.Equal(t, "json", prod.Encoding)
	assert.Equal(t, "timestamp", prod.EncoderConfig.TimeKey)
	assert.Equal(t, []string{"stdout"}, prod.OutputPaths)
	assert.Equal(t, zapcore.WarnLevel, prod.Level.Level())

	dev := Config("debug", "console")
	assert.Equal(t, "console", dev.Encoding)
	assert.True(t, dev.Development)
	assert.Equal(t, zapcore.DebugLevel, dev.Level.Level())
}

func TestNew(t *testing.T) {
	l, err := New("info", "json", "healthmate-server")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestTag(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tag(zap.New(core), "healthmate-server").Info("hello")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "healthmate-server", fields["service_name"])
	assert.Contains(t, fields, "hostname")
}
