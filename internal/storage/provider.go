// Package storage defines the kneeboard file-system abstraction.
package storage

import "github.com/starford/kneeview/internal/models"

// Provider is the interface for kneeboard file operations.
type Provider interface {
	// Root returns the absolute kneeboard root directory.
	Root() string
	// List returns the files directly under dir (relative to root) whose
	// extension equals ext, compared case-insensitively. A missing dir yields
	// an error wrapping os.ErrNotExist.
	List(dir, ext string) ([]models.FileEntry, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
}
