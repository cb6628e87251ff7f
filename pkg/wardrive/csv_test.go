package wardrive

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/irctrakz/ghostcap/pkg/core"
	"github.com/irctrakz/ghostcap/pkg/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dir string) core.WardrivingConfig {
	return core.WardrivingConfig{Dir: dir, BaseName: "gps_data", BufferSize: 4096}
}

func TestFormatRecord(t *testing.T) {
	line, err := FormatRecord(goodFix(), goodAP())
	require.NoError(t, err)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff,HomeNet,37.700000,-122.400000,-61,6,WPA2,2024-05-17 13:04:59.120\n", string(line))
}

func TestFormatRecordQuotesSSID(t *testing.T) {
	ap := goodAP()
	ap.SSID = `Cafe, "Free"`
	line, err := FormatRecord(goodFix(), ap)
	require.NoError(t, err)
	assert.Contains(t, string(line), `,"Cafe, ""Free""",`)
}

func TestFormatRecordOverflow(t *testing.T) {
	ap := goodAP()
	ap.Encryption = strings.Repeat("x", MaxLineLen)
	_, err := FormatRecord(goodFix(), ap)
	assert.ErrorIs(t, err, core.ErrFormattingOverflow)

	_, err = FormatRecord(nil, goodAP())
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestCSVSessionFile(t *testing.T) {
	dir := t.TempDir()
	var uart bytes.Buffer
	e := NewCSVEncoder(testConfig(dir), &uart)
	require.NoError(t, e.OpenSession(""))
	assert.Equal(t, filepath.Join(dir, "gps_data_0.csv"), e.Destination())

	require.NoError(t, e.WriteRecord(goodFix(), goodAP()))
	require.NoError(t, e.CloseSession())
	assert.Zero(t, uart.Len())

	data, err := os.ReadFile(filepath.Join(dir, "gps_data_0.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.TrimSuffix(Header, "\n"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "aa:bb:cc:dd:ee:ff,HomeNet,"))
}

func TestCSVSessionSerialFallback(t *testing.T) {
	var uart bytes.Buffer
	e := NewCSVEncoder(testConfig(filepath.Join(t.TempDir(), "missing")), &uart)
	require.NoError(t, e.OpenSession(""))
	assert.Equal(t, "serial", e.Destination())

	require.NoError(t, e.WriteRecord(goodFix(), goodAP()))
	require.NoError(t, e.WriteHeader())
	require.NoError(t, e.CloseSession())

	var out bytes.Buffer
	n, err := serial.Unframe(&out, &uart)
	require.NoError(t, err)
	// header at open, then the row and second header in one flush
	assert.Equal(t, 2, n)
	assert.True(t, strings.HasPrefix(out.String(), Header))
	assert.True(t, strings.HasSuffix(out.String(), Header))
}

func TestCSVCreateFailure(t *testing.T) {
	var uart bytes.Buffer
	e := NewCSVEncoder(testConfig(t.TempDir()), &uart,
		WithCreate(func(string) (io.WriteCloser, error) { return nil, errors.New("disk full") }))
	assert.ErrorIs(t, e.OpenSession("walk"), core.ErrIO)
	assert.Equal(t, "serial", e.Destination())
	assert.Contains(t, uart.String(), Header)
	require.NoError(t, e.CloseSession())
}

func TestCSVWithoutSession(t *testing.T) {
	e := NewCSVEncoder(testConfig(t.TempDir()), nil)
	assert.ErrorIs(t, e.WriteRecord(goodFix(), goodAP()), core.ErrInvalidArgument)
	assert.ErrorIs(t, e.WriteHeader(), core.ErrInvalidArgument)
	assert.NoError(t, e.Flush())
	assert.NoError(t, e.CloseSession())
	assert.Equal(t, "", e.Destination())
}
