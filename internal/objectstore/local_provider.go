package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// LocalProvider implements Store against the local filesystem, rooted at
// basePath. Pared down to just the two operations this worker needs: a
// full multi-provider registry would be disproportionate to a single
// configured bucket.
type LocalProvider struct {
	basePath string
	mu       sync.RWMutex
}

// NewLocalProvider creates a local storage provider rooted at basePath,
// creating the directory if it does not exist.
func NewLocalProvider(basePath string) (*LocalProvider, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("objectstore: failed to create storage root: %w", err)
	}
	return &LocalProvider{basePath: basePath}, nil
}

// Get reads the blob at path.
func (p *LocalProvider) Get(ctx context.Context, path string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	full := filepath.Join(p.basePath, path)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("objectstore: failed to read %s: %w", path, err)
	}
	return data, nil
}

// Put writes data to path, creating any missing parent directories and
// overwriting an existing blob at that path (upsert semantics).
func (p *LocalProvider) Put(ctx context.Context, path string, data []byte, contentType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	full := filepath.Join(p.basePath, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("objectstore: failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("objectstore: failed to write %s: %w", path, err)
	}
	return nil
}
