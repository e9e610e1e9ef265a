package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileManager_WriteThenRead(t *testing.T) {
	fm := NewFileManager(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "nested", "out.txt")

	require.NoError(t, fm.WriteFile(path, []byte("hello"), DefaultFileWriteOptions()))
	assert.True(t, fm.FileExists(path))

	data, err := fm.ReadFile(path, DefaultFileReadOptions())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestFileManager_ReadFileTooLarge(t *testing.T) {
	fm := NewFileManager(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "big.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0644))

	_, err := fm.ReadFile(path, FileReadOptions{MaxSize: 10})
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestFileManager_ReadMissing(t *testing.T) {
	fm := NewFileManager(zerolog.Nop())
	_, err := fm.ReadFile(filepath.Join(t.TempDir(), "nope"), DefaultFileReadOptions())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileManager_EnsureDirectoryOnFile(t *testing.T) {
	fm := NewFileManager(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	err := fm.EnsureDirectory(path, 0755)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestReadAllLimited(t *testing.T) {
	data, err := ReadAllLimited(strings.NewReader("abc"), 3)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	_, err = ReadAllLimited(strings.NewReader("abcd"), 3)
	assert.ErrorIs(t, err, ErrInputTooLarge)

	data, err = ReadAllLimited(strings.NewReader("abcd"), 0)
	require.NoError(t, err)
	assert.Len(t, data, 4)
}
