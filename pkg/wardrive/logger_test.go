package wardrive

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/irctrakz/ghostcap/pkg/core"
	"github.com/irctrakz/ghostcap/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	logging.SetLevel(logging.DebugLevel)
	t.Cleanup(func() {
		logging.SetOutput(os.Stderr)
		logging.SetLevel(logging.InfoLevel)
	})
	return &buf
}

func TestLoggerWritesAcceptedRows(t *testing.T) {
	logs := captureLogs(t)
	dir := t.TempDir()
	enc := NewCSVEncoder(testConfig(dir), nil)
	require.NoError(t, enc.OpenSession(""))

	l := NewLogger(enc, LoggerConfig{Info: NewEveryN(2)})
	for i := 0; i < 4; i++ {
		require.NoError(t, l.Log(goodFix(), goodAP()))
	}
	require.NoError(t, enc.CloseSession())

	data, err := os.ReadFile(filepath.Join(dir, "gps_data_0.csv"))
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(string(data), "\n"))
	assert.Equal(t, 2, strings.Count(logs.String(), "Wrote to buffer"))
	assert.Contains(t, logs.String(), "satellites=9")
}

func TestLoggerSkips(t *testing.T) {
	logs := captureLogs(t)
	dir := t.TempDir()
	enc := NewCSVEncoder(testConfig(dir), nil)
	require.NoError(t, enc.OpenSession(""))
	l := NewLogger(enc, LoggerConfig{Warn: NewEveryN(1)})

	assert.ErrorIs(t, l.Log(nil, goodAP()), core.ErrInvalidArgument)

	ap := goodAP()
	ap.SSID = "x"
	assert.NoError(t, l.Log(goodFix(), ap))
	assert.NotContains(t, logs.String(), "Warning")

	fast := goodFix()
	fast.Speed = 500
	assert.NoError(t, l.Log(fast, goodAP()))
	assert.Contains(t, logs.String(), "Warning: gps speed out of range")
	assert.Contains(t, logs.String(), "speed=500")

	require.NoError(t, enc.CloseSession())
	data, err := os.ReadFile(filepath.Join(dir, "gps_data_0.csv"))
	require.NoError(t, err)
	assert.Equal(t, Header, string(data))
}

func TestLoggerWarningsAreSampled(t *testing.T) {
	logs := captureLogs(t)
	enc := NewCSVEncoder(testConfig(t.TempDir()), nil)
	require.NoError(t, enc.OpenSession(""))
	defer enc.CloseSession()

	l := NewLogger(enc, LoggerConfig{Warn: NewEveryN(3)})
	bad := goodFix()
	bad.DOPH = 99
	for i := 0; i < 6; i++ {
		require.NoError(t, l.Log(bad, goodAP()))
	}
	assert.Equal(t, 2, strings.Count(logs.String(), "Warning: gps dop out of range"))
}
