package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		desc    string
		logsDir string
		want    string
	}{
		{"basic path", "logs", filepath.Join("logs", "dsview.20260212_213836.log")},
		{"relative path with dot", "./logs", filepath.Join(".", "logs", "dsview.20260212_213836.log")},
		{"absolute path", filepath.Join("/var", "log", "dsview"), filepath.Join("/var", "log", "dsview", "dsview.20260212_213836.log")},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, LogFilePath(tt.logsDir, "dsview", sessionStart))
		})
	}
}

func TestOpenLogFile(t *testing.T) {
	start := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	f, err := OpenLogFile(dir, "dsview", start)
	require.NoError(t, err)
	_, err = f.WriteString("line\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(LogFilePath(dir, "dsview", start))
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}
