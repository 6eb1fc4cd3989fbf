package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogFileWriter_CreatesDirAndRotates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	path := filepath.Join(dir, "canopy.log")

	w, err := newLogFileWriter(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)
	require.NoError(t, w.Rotate())
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second\n", string(current))

	backups, err := filepath.Glob(filepath.Join(dir, "canopy-*.log"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
	rotated, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	require.Equal(t, "first\n", string(rotated))
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, "DEBUG", parseLogLevel("debug").String())
	require.Equal(t, "INFO", parseLogLevel("bogus").String())
	require.Equal(t, "ERROR", parseLogLevel("error").String())
}
