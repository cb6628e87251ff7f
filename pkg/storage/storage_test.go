package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
}

func TestNextNameEmptyDir(t *testing.T) {
	dir := t.TempDir()
	name, err := NextName(dir, "capture", "pcap")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "capture_0.pcap"), name)
}

func TestNextNameAfterHighestIndex(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "capture_0.pcap")
	touch(t, dir, "capture_7.pcap")
	touch(t, dir, "capture_3.pcap")
	// other bases, extensions and malformed indices are ignored
	touch(t, dir, "capture_99.csv")
	touch(t, dir, "beacon_42.pcap")
	touch(t, dir, "capture_x.pcap")
	touch(t, dir, "capture_-5.pcap")
	touch(t, dir, "capture_.pcap")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "capture_50.pcap"), 0755))

	name, err := NextName(dir, "capture", "pcap")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "capture_8.pcap"), name)

	name, err = NextName(dir, "capture", "csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "capture_100.csv"), name)
}

func TestNextNameMissingDir(t *testing.T) {
	_, err := NextName(filepath.Join(t.TempDir(), "missing"), "gps_data", "csv")
	assert.Error(t, err)
}

func TestOSProbe(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "file")

	var p Probe = OSProbe{}
	assert.True(t, p.DirExists(dir))
	assert.False(t, p.DirExists(filepath.Join(dir, "file")))
	assert.False(t, p.DirExists(filepath.Join(dir, "missing")))
}
