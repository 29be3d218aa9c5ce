// Package storage defines the durable archive abstraction for rendered
// journal documents.
package storage

import "github.com/kedbin/ai-devops-journal/internal/models"

// Provider is the interface for archive operations. Artifacts are written
// once at a unique path and never updated in place; retention is an external
// policy, so the interface deliberately has no delete operation.
type Provider interface {
	// List returns metadata for every .md artifact under prefix (relative
	// to the archive root).
	List(prefix string) ([]models.EntryMetadata, error)
	// Read returns the raw bytes of the artifact at path.
	Read(path string) ([]byte, error)
	// Write atomically persists content at path. The caller guarantees path
	// uniqueness; an existing artifact at path is an error.
	Write(path string, content []byte) error
}
