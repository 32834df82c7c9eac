package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProviderPutThenGetRoundTrips(t *testing.T) {
	root := t.TempDir()
	p, err := NewLocalProvider(root)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.Put(ctx, "jobs/abc/sheet_01.dxf", []byte("0\nSECTION\n"), "application/dxf"))

	data, err := p.Get(ctx, "jobs/abc/sheet_01.dxf")
	require.NoError(t, err)
	assert.Equal(t, "0\nSECTION\n", string(data))
}

func TestLocalProviderPutOverwritesExisting(t *testing.T) {
	root := t.TempDir()
	p, err := NewLocalProvider(root)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, p.Put(ctx, "manifest.json", []byte("first"), "application/json"))
	require.NoError(t, p.Put(ctx, "manifest.json", []byte("second"), "application/json"))

	data, err := p.Get(ctx, "manifest.json")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalProviderGetMissingReturnsError(t *testing.T) {
	root := t.TempDir()
	p, err := NewLocalProvider(root)
	require.NoError(t, err)

	_, err = p.Get(context.Background(), "nope.dxf")
	assert.Error(t, err)
}

func TestNewLocalProviderCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "storage")
	_, err := NewLocalProvider(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
