// Package storage defines rooted file access for the site directory.
package storage

import (
	"io/fs"
	"os"
)

// Provider is the interface for site file operations. All paths are
// relative to the site root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Open returns the regular file at path together with its stat info.
	Open(path string) (*os.File, fs.FileInfo, error)
	// Abs resolves path to an absolute file system path under the root.
	Abs(path string) (string, error)
}

var _ Provider = (*FS)(nil)
