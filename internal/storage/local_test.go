package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fileNamePattern = regexp.MustCompile(`^food_\d+_[0-9a-f]{8}\.jpg$`)

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/"))

	name := strings.TrimPrefix(url, "/uploads/")
	assert.Regexp(t, fileNamePattern, name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestLocalStorageRejectsUnknownType(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "application/pdf", strings.NewReader("%PDF"))
	assert.Error(t, err)

	_, err = s.Save(context.Background(), "", strings.NewReader("data"))
	assert.Error(t, err)
}

func TestLocalStorageRemove(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(context.Background(), url))

	name := strings.TrimPrefix(url, "/uploads/")
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))

	// Removing an unknown URL is not an error.
	assert.NoError(t, s.Remove(context.Background(), "/uploads/missing.jpg"))
}
