package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLogLevelUnmarshalText(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"OFF", LogLevelOff},
		{"ERROR", LogLevelError},
		{"WARN", LogLevelWarn},
		{"INFO", LogLevelInfo},
		{"DEBUG", LogLevelDebug},
		{"debug", LogLevelDebug},
		{"Info", LogLevelInfo},
	}

	for _, tt := range tests {
		var level LogLevel
		require.NoError(t, level.UnmarshalText([]byte(tt.input)), tt.input)
		assert.Equal(t, tt.expected, level, tt.input)
	}
}

func TestLogLevelUnmarshalTextRejectsUnknown(t *testing.T) {
	var level LogLevel
	assert.Error(t, level.UnmarshalText([]byte("VERBOSE")))
}

func TestLogLevelString(t *testing.T) {
	level := LogLevelWarn
	assert.Equal(t, "WARN", level.String())
}

func TestLoggerInterfaceCompliance(t *testing.T) {
	var _ Logger = NewLogger(LogLevelInfo)
	var _ Logger = NewNopLogger()
}

func TestMockLoggerTracksErrors(t *testing.T) {
	logger := &MockLogger{}
	logger.On("Warn", mock.Anything, mock.Anything).Return()
	logger.On("Error", mock.Anything, mock.Anything).Return()

	var _ Logger = logger

	logger.Warn("just a warning")
	logger.Error("first failure")
	logger.Error("second failure")

	assert.Equal(t, 2, logger.ErrorCallCount)
	assert.Equal(t, "second failure", logger.LastErrorMessage)
	logger.AssertExpectations(t)
}

func TestNopLoggerIsSilentAndSafe(t *testing.T) {
	logger := NewNopLogger()
	logger.Debug("msg", "k", "v")
	logger.Info("msg")
	logger.Warn("msg", "k", 1, "dangling")
	logger.Error("msg")
	logger.SetLevel(LogLevelDebug)
}
