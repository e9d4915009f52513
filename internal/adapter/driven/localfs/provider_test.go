package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_FileContent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "thing.go"), []byte("package pkg\n"), 0o644))

	p := NewProvider(root)

	content, found, err := p.FileContent(context.Background(), "pkg/thing.go")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "package pkg\n", content)
}

func TestProvider_MissingFileIsNotAnError(t *testing.T) {
	p := NewProvider(t.TempDir())

	_, found, err := p.FileContent(context.Background(), "nope/missing.go")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProvider_RejectsEscapingPaths(t *testing.T) {
	p := NewProvider(t.TempDir())

	_, _, err := p.FileContent(context.Background(), "../etc/passwd")
	assert.Error(t, err)
}

func TestProvider_CancelledContext(t *testing.T) {
	p := NewProvider(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.FileContent(ctx, "pkg/thing.go")
	assert.ErrorIs(t, err, context.Canceled)
}
