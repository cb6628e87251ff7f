// Package storage answers whether the capture medium is mounted and picks
// the next rotated file name in a directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Probe reports whether a directory is available for writing sessions into.
type Probe interface {
	DirExists(path string) bool
}

// OSProbe checks the local filesystem.
type OSProbe struct{}

// DirExists reports whether path exists and is a directory.
func (OSProbe) DirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// NextName returns dir/base_<N>.ext where N is one more than the highest
// index already present in dir, or 0 when there is none.
func NextName(dir, base, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	next := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := parseIndex(e.Name(), base, ext); ok && n >= next {
			next = n + 1
		}
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%d.%s", base, next, ext)), nil
}

// parseIndex extracts N from "<base>_<N>.<ext>".
func parseIndex(name, base, ext string) (int, bool) {
	rest, ok := strings.CutPrefix(name, base+"_")
	if !ok {
		return 0, false
	}
	digits, ok := strings.CutSuffix(rest, "."+ext)
	if !ok || digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
