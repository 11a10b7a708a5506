package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/logger"
)

// SimpleTempManager hands out uniquely named transient files under one base
// directory and guarantees their removal.
type SimpleTempManager struct {
	baseDir   string
	tempFiles map[string]struct{}
	mu        sync.Mutex
	logger    *logger.Logger
}

// Ensure SimpleTempManager implements TempFileManager interface
var _ interfaces.TempFileManager = (*SimpleTempManager)(nil)

// NewSimpleTempManager creates a temp manager rooted at baseDir (os.TempDir() when empty)
func NewSimpleTempManager(baseDir string, log *logger.Logger) *SimpleTempManager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &SimpleTempManager{
		baseDir:   NormalizePath(baseDir),
		tempFiles: make(map[string]struct{}),
		logger:    log,
	}
}

// GetBasePath returns the directory transient files are created in
func (tm *SimpleTempManager) GetBasePath() string {
	return tm.baseDir
}

// CreateTempFile creates an empty, uniquely named file and tracks it
func (tm *SimpleTempManager) CreateTempFile(prefix, suffix string) (string, error) {
	if err := EnsureDir(tm.baseDir); err != nil {
		return "", fmt.Errorf("failed to ensure base directory: %w", err)
	}

	sanitizedPrefix := SanitizeFileName(prefix)
	if sanitizedPrefix == "" {
		sanitizedPrefix = "temp"
	}

	file, err := os.CreateTemp(tm.baseDir, sanitizedPrefix+"*"+sanitizeSuffix(suffix))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := NormalizePath(file.Name())
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	tm.track(path)
	tm.logger.Debug("Created temp file: %s", path)
	return path, nil
}

// WriteTransientFile copies data into a new tracked file whose name ends with suffix
func (tm *SimpleTempManager) WriteTransientFile(suffix string, data io.Reader) (string, error) {
	if err := EnsureDir(tm.baseDir); err != nil {
		return "", NewIOError("failed to prepare temporary directory", err)
	}

	file, err := os.CreateTemp(tm.baseDir, constants.TransientFilePrefix+"*"+sanitizeSuffix(suffix))
	if err != nil {
		return "", NewIOError("failed to create temporary file", err)
	}
	path := NormalizePath(file.Name())
	tm.track(path)

	n, copyErr := io.Copy(file, data)
	closeErr := file.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		tm.remove(path)
		return "", NewIOError("failed to write temporary file", copyErr)
	}

	tm.logger.Debug("Wrote %d bytes to transient file: %s", n, path)
	return path, nil
}

// WithTransientFile materializes data as a transient file, runs fn on its
// path and removes the file on every exit path, including panics in fn.
func (tm *SimpleTempManager) WithTransientFile(suffix string, data io.Reader, fn func(path string) error) error {
	path, err := tm.WriteTransientFile(suffix, data)
	if err != nil {
		return err
	}
	defer tm.remove(path)

	return fn(path)
}

// Remove deletes a file created by the manager; a file already gone is not an error
func (tm *SimpleTempManager) Remove(path string) error {
	return tm.removeErr(NormalizePath(path))
}

// Cleanup removes every file still tracked by the manager
func (tm *SimpleTempManager) Cleanup() error {
	tm.mu.Lock()
	paths := make([]string, 0, len(tm.tempFiles))
	for path := range tm.tempFiles {
		paths = append(paths, path)
	}
	tm.mu.Unlock()

	var errs []error
	for _, path := range paths {
		if err := tm.removeErr(path); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup failed with %d errors: %v", len(errs), errs)
	}
	return nil
}

// Pending returns the number of tracked files not yet removed
func (tm *SimpleTempManager) Pending() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.tempFiles)
}

func (tm *SimpleTempManager) track(path string) {
	tm.mu.Lock()
	tm.tempFiles[path] = struct{}{}
	tm.mu.Unlock()
}

func (tm *SimpleTempManager) remove(path string) {
	if err := tm.removeErr(path); err != nil {
		tm.logger.Warn("Failed to remove temporary file: %v", err)
	}
}

func (tm *SimpleTempManager) removeErr(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp file %s: %w", path, err)
	}

	tm.mu.Lock()
	delete(tm.tempFiles, path)
	tm.mu.Unlock()
	tm.logger.Debug("Removed temporary file: %s", path)
	return nil
}

// sanitizeSuffix keeps only the extension part of a client-supplied suffix
func sanitizeSuffix(suffix string) string {
	suffix = filepath.Base(filepath.ToSlash(suffix))
	if suffix == "." || suffix == "/" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 || r == '*' {
			return -1
		}
		return r
	}, suffix)
}
