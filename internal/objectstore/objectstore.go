// Package objectstore provides a narrow Get/Put abstraction over blob
// storage addressed by path: downloading a source DXF and uploading a
// sheet's DXF, SVG, and manifest outputs.
package objectstore

import "context"

// Store is the collaborator interface the worker depends on. A given path
// is write-once per job in normal operation; Put is an upsert so a retried
// job can recover from a previous partially-uploaded attempt.
type Store interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Put(ctx context.Context, path string, data []byte, contentType string) error
}
