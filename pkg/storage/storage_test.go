package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutGet(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "archive/CONTRACT/c1/GXXCON0001.xlsx", "application/octet-stream", strings.NewReader("sheet")))

	b, err := os.ReadFile(filepath.Join(dir, "archive", "CONTRACT", "c1", "GXXCON0001.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "sheet", string(b))

	rc, err := s.Get(ctx, "archive/CONTRACT/c1/GXXCON0001.xlsx")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "sheet", string(got))
}

func TestLocalStoreGetMissing(t *testing.T) {
	s := NewLocalStore(t.TempDir())

	_, err := s.Get(context.Background(), "archive/INVOICE/x/none.xlsx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	s := NewLocalStore(t.TempDir())

	for _, key := range []string{"", "../etc/passwd", "a/../../b"} {
		err := s.Put(context.Background(), key, "", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, key)
		_, err = s.Get(context.Background(), key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestOpenDefaultsToLocal(t *testing.T) {
	s, err := Open(context.Background(), "local", "", t.TempDir())
	require.NoError(t, err)
	_, ok := s.(*LocalStore)
	assert.True(t, ok)
	assert.NoError(t, s.Close())

	_, err = Open(context.Background(), "gcs", "", "")
	assert.Error(t, err)
}
