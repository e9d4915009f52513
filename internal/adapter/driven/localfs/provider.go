// Package localfs implements the ContentProvider port over a working tree on
// the local filesystem, covering review of uncommitted edits.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/reviewpin/reviewpin/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ContentProvider = (*Provider)(nil)

// Provider reads whole files from a root directory. Paths handed to
// FileContent are repository-relative; anything escaping the root is
// rejected.
type Provider struct {
	root string
}

// NewProvider creates a Provider rooted at dir.
func NewProvider(dir string) *Provider {
	return &Provider{root: dir}
}

// FileContent returns the full text of the file at the given relative path.
// A missing file reports found=false, not an error.
func (p *Provider) FileContent(ctx context.Context, path string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", false, fmt.Errorf("path %q escapes repository root", path)
	}

	data, err := os.ReadFile(filepath.Join(p.root, clean))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", path, err)
	}

	return string(data), true, nil
}
