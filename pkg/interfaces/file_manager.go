package interfaces

import "io"

// TempFileManager manages transient files that only live for the duration
// of a single conversion
type TempFileManager interface {
	// GetBasePath returns the directory transient files are created in
	GetBasePath() string

	// CreateTempFile creates an empty temporary file
	CreateTempFile(prefix, suffix string) (string, error)

	// WriteTransientFile copies data into a new uniquely named file ending in suffix
	WriteTransientFile(suffix string, data io.Reader) (string, error)

	// WithTransientFile writes data to a transient file, runs fn with its path
	// and removes the file afterwards, whatever fn returns
	WithTransientFile(suffix string, data io.Reader, fn func(path string) error) error

	// Remove deletes one file handed out by the manager and stops tracking it
	Remove(path string) error

	// Cleanup removes any file the manager still tracks
	Cleanup() error
}
