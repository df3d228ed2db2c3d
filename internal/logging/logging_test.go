package logging

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		want    string
	}{
		{"basic path", "logs", filepath.Join("logs", "launch_dashboard.20260212_213836.log")},
		{"relative path with dot", "./logs", filepath.Join(".", "logs", "launch_dashboard.20260212_213836.log")},
		{"absolute path", filepath.Join("/var", "log", "dash"), filepath.Join("/var", "log", "dash", "launch_dashboard.20260212_213836.log")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LogFilePath(tt.logsDir, "launch_dashboard", sessionStart))
		})
	}
}

func TestNewZerolog(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewZerolog(&buf, tt.level)
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}

func TestNewZerolog_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerolog(&buf, "info")
	l.Info().Str("bucket", "dashboard_interactions").Msg("writer ready")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "writer ready", entry["message"])
	assert.Equal(t, "dashboard_interactions", entry["bucket"])
	assert.Contains(t, entry, "time")
}

func TestNewGELFWriter_SendsToGraylogInput(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	w, err := NewGELFWriter(conn.LocalAddr().String())
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("dashboard started\n"))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	packet := make([]byte, 8192)
	n, _, err := conn.ReadFrom(packet)
	require.NoError(t, err)

	zr, err := gzip.NewReader(bytes.NewReader(packet[:n]))
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(body, &msg))
	assert.Equal(t, "dashboard started", msg["short_message"])
}
