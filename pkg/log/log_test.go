package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwantia/arsip/internal/config"
)

func TestParse(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   Debug,
		"INFO":    Info,
		"":        Info,
		"warning": Warn,
		"Error":   Error,
		"fatal":   Fatal,
		"bogus":   Info,
	}
	for in, want := range cases {
		assert.Equal(t, want, Parse(in), in)
	}
	assert.Equal(t, "WARN", Warn.String())
}

func TestLoggerService_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerServiceWithWriter("arsip", config.LogConfig{Level: "WARN", NoColor: true}, &buf)

	logger.Info("hidden %d", 1)
	logger.Warn("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "[arsip]")
}

func TestLoggerService_JSONNamed(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerServiceWithWriter("arsip", config.LogConfig{Level: "DEBUG", JSON: true}, &buf)

	logger.Named("archive").Debug("restored %s", "7_007.pdf")

	var entry logEntry
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "DEBUG", entry.Level)
	assert.Equal(t, "arsip/archive", entry.Service)
	assert.Equal(t, "restored 7_007.pdf", entry.Message)
}

func TestLoggerService_MessageWithoutArgs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerServiceWithWriter("", config.LogConfig{Level: "INFO", NoColor: true}, &buf)

	logger.Info("100% done")
	assert.Contains(t, buf.String(), "100% done")
}

func TestLoggerTagProcessor_CanProcess(t *testing.T) {
	ltp := NewLoggerTagProcessor()

	assert.True(t, ltp.CanProcess("logger"))
	assert.True(t, ltp.CanProcess("Logger:records"))
	assert.False(t, ltp.CanProcess("inject"))
	assert.Equal(t, 50, ltp.GetPriority())
	assert.Equal(t, "records", loggerName("logger: records"))
	assert.Empty(t, loggerName("logger"))
}
