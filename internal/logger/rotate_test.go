package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingFile_WritesAndCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pdfchat.log")
	w := NewRotatingFile(path, 1024, 2)
	defer w.Close()

	n, err := w.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
	assert.Equal(t, path, w.Path())
}

func TestRotatingFile_RotatesAndKeepsBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w := NewRotatingFile(path, 10, 2)
	defer w.Close()

	for _, line := range []string{"aaaaaaaa\n", "bbbbbbbb\n", "cccccccc\n", "dddddddd\n"} {
		_, err := w.Write([]byte(line))
		require.NoError(t, err)
	}

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dddddddd\n", string(current))

	first, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, "cccccccc\n", string(first))

	second, err := os.ReadFile(path + ".2")
	require.NoError(t, err)
	assert.Equal(t, "bbbbbbbb\n", string(second))

	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err))
}

func TestRotatingFile_NoBackupsTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w := NewRotatingFile(path, 8, 0)
	defer w.Close()

	_, err := w.Write([]byte("1234567\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("abc\n"))
	require.NoError(t, err)

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc\n", string(current))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "app.log."), "unexpected backup %s", e.Name())
	}
}

func TestRotatingFile_AsSink(t *testing.T) {
	defer SetSink(nil)

	path := filepath.Join(t.TempDir(), "app.log")
	w := NewRotatingFile(path, 0, 5)
	defer w.Close()
	SetSink(w)

	Warn("index %s missing", "pdf_documents")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WARN  index pdf_documents missing")
}
