package uploads

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid PNG signature plus IHDR start
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	s := NewStorage(dir, "https://api.example/")

	stored, err := s.save(bytes.NewReader(append(pngHeader, make([]byte, 64)...)))
	require.NoError(t, err)

	assert.Equal(t, "image/png", stored.MimeType)
	assert.True(t, strings.HasSuffix(stored.Name, ".png"))
	assert.Equal(t, "https://api.example/uploads/"+stored.Name, stored.URL)

	info, err := os.Stat(filepath.Join(dir, stored.Name))
	require.NoError(t, err)
	assert.Equal(t, stored.Size, info.Size())
}

func TestSaveRejectsNonImages(t *testing.T) {
	dir := t.TempDir()
	s := NewStorage(dir, "http://localhost:8080")

	_, err := s.save(strings.NewReader("#!/bin/sh\necho hi\n"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = s.save(bytes.NewReader([]byte("%PDF-1.4\n")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
