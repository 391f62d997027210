package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalStorage(dir, "/uploads/")
	require.NoError(t, err)

	path, err := s.Save(context.Background(), "abc.jpg", []byte("image-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.jpg", path)

	data, err := os.ReadFile(filepath.Join(dir, "abc.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
}

func TestLocalStorage_Save_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)

	path, err := s.Save(context.Background(), "../../etc/evil.png", []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/evil.png", path)
	assert.FileExists(t, filepath.Join(dir, "evil.png"))
}

func TestLocalStorage_Save_CancelledContext(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Save(ctx, "a.jpg", []byte("x"), "image/jpeg")
	assert.ErrorIs(t, err, context.Canceled)
}
