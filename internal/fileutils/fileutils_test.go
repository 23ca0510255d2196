package fileutils

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "games.pgn")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir), "a directory is not a file")
	assert.False(t, FileExists(filepath.Join(dir, "missing.pgn")))
}

func TestDirectoryExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, DirectoryExists(dir))
	assert.False(t, DirectoryExists(filepath.Join(dir, "missing")))
}

func TestEnsureDirectoryExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, EnsureDirectoryExists(dir))
	assert.True(t, DirectoryExists(dir))
	require.NoError(t, EnsureDirectoryExists(dir), "existing directory is fine")
	require.NoError(t, EnsureDirectoryExists(""))
}

func TestCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "blitz.data")

	file, err := CreateFile(path)
	require.NoError(t, err)
	_, err = file.WriteString("1500,1\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1500,1\n", string(data))
}

func TestCreateFile_Failure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := CreateFile(filepath.Join(blocker, "blitz.data"))
	assert.Error(t, err)
}

func TestOpenInput_Stdin(t *testing.T) {
	for _, path := range []string{"", "-"} {
		rc, name, err := OpenInput(path, strings.NewReader("[Event \"x\"]"))
		require.NoError(t, err)
		assert.Equal(t, "stdin", name)

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "[Event \"x\"]", string(data))
		require.NoError(t, rc.Close())
	}
}

func TestOpenInput_PlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.pgn")
	require.NoError(t, os.WriteFile(path, []byte("plain"), 0600))

	rc, name, err := OpenInput(path, nil)
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, path, name)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "plain", string(data))
}

func TestOpenInput_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.pgn.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("compressed"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	rc, _, err := OpenInput(path, nil)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "compressed", string(data))
	assert.NoError(t, rc.Close())
}

func TestOpenInput_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := OpenInput(filepath.Join(dir, "missing.pgn"), nil)
	assert.ErrorContains(t, err, "input file does not exist")

	bad := filepath.Join(dir, "bad.gz")
	require.NoError(t, os.WriteFile(bad, []byte("not gzip"), 0600))
	_, _, err = OpenInput(bad, nil)
	assert.ErrorContains(t, err, "failed to open gzip input")
}
