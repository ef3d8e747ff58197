// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package tmpwriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClose(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "novel.txt")

	w, err := Make(dst)
	require.NoError(t, err)
	w.WriteString("title\n")
	w.Write([]byte("body"))
	assert.Equal(t, 10, w.Len())

	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err), "destination must not appear before Close")

	require.NoError(t, w.Close())
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "title\nbody", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "novel.txt")
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))

	w, err := Make(dst)
	require.NoError(t, err)
	w.WriteString("partial")
	w.Reset()
	assert.Error(t, w.Close())

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
