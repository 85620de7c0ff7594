package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetVerbose(t *testing.T) {
	Logger = logrus.New()

	SetVerbose()
	assert.Equal(t, logrus.DebugLevel, Logger.Level)
}

func TestSetQuiet(t *testing.T) {
	Logger = logrus.New()

	SetQuiet()
	assert.Equal(t, logrus.ErrorLevel, Logger.Level)
}

func TestSetLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"bogus", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("should map "+tt.input, func(t *testing.T) {
			Logger = logrus.New()
			SetLevel(tt.input)
			assert.Equal(t, tt.expected, Logger.Level)
		})
	}
}

func TestSetOutput(t *testing.T) {
	Logger = logrus.New()

	var buf bytes.Buffer
	SetOutput(&buf)

	t.Run("should write structured fields to the redirected writer", func(t *testing.T) {
		buf.Reset()
		Logger.WithFields(logrus.Fields{
			"path":     "src/a.go",
			"excluded": true,
		}).Info("entry evaluated")

		output := buf.String()
		assert.Contains(t, output, "entry evaluated")
		assert.Contains(t, output, "src/a.go")
		assert.Contains(t, output, "excluded=true")
	})

	t.Run("should drop info entries in quiet mode", func(t *testing.T) {
		SetQuiet()
		buf.Reset()
		Logger.Info("hidden")
		assert.Empty(t, buf.String())

		Logger.WithError(assert.AnError).Error("still shown")
		assert.Contains(t, buf.String(), assert.AnError.Error())
	})
}
