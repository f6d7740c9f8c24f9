// Package storage defines the read-only content file-system abstraction.
package storage

import (
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

// Provider is the interface for content file access. The web tier never
// writes content, so only read operations are exposed.
type Provider interface {
	// List returns metadata for every .md/.mdx file under dir (relative to root).
	List(dir string) ([]models.SourceFile, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Root returns the absolute content root.
	Root() string
}

// IsContentFile reports whether name has a Markdown content extension.
func IsContentFile(name string) bool {
	for _, ext := range ContentExtensions {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// ContentExtensions lists the accepted content file extensions in lookup order.
var ContentExtensions = []string{".md", ".mdx"}
