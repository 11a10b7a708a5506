package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nodewee/file-to-text/pkg/constants"
)

// NormalizePath normalizes a path for the current platform
func NormalizePath(path string) string {
	cleaned := filepath.Clean(path)

	// On Windows, ensure proper drive letter formatting
	if constants.IsWindows() && len(cleaned) >= 2 && cleaned[1] == ':' {
		if cleaned[0] >= 'a' && cleaned[0] <= 'z' {
			cleaned = strings.ToUpper(string(cleaned[0])) + cleaned[1:]
		}
	}

	return cleaned
}

// GetAbsolutePath returns the absolute, normalized path
func GetAbsolutePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return NormalizePath(absPath), nil
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dirPath string) error {
	return os.MkdirAll(NormalizePath(dirPath), constants.DefaultDirPermission)
}

// ExpandPath expands environment variables and the user home directory in path
func ExpandPath(path string) (string, error) {
	expanded := os.ExpandEnv(path)

	if strings.HasPrefix(expanded, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}

		if expanded == "~" {
			expanded = homeDir
		} else if strings.HasPrefix(expanded, "~/") {
			expanded = filepath.Join(homeDir, expanded[2:])
		}
	}

	return NormalizePath(expanded), nil
}

// SanitizeFileName sanitizes a filename for the current platform
func SanitizeFileName(filename string) string {
	sanitized := filename

	if constants.IsWindows() {
		invalidChars := []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*"}
		for _, char := range invalidChars {
			sanitized = strings.ReplaceAll(sanitized, char, "_")
		}
		// Trailing dots and spaces are invalid on Windows
		sanitized = strings.TrimRight(sanitized, ". ")
	} else {
		sanitized = strings.ReplaceAll(sanitized, "/", "_")
		sanitized = strings.ReplaceAll(sanitized, "\x00", "_")
	}

	if strings.TrimSpace(sanitized) == "" {
		sanitized = "unnamed_file"
	}

	return sanitized
}

// ClientBaseName returns the last path element of a client-supplied filename.
// Browsers may send either separator, so both are treated as directory breaks.
func ClientBaseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// TextFileName derives the download name for a converted file:
// the final extension is replaced with .txt and directories are dropped.
func TextFileName(originalFilename string) string {
	base := ClientBaseName(originalFilename)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	if strings.TrimSpace(base) == "" {
		base = "converted"
	}
	return base + constants.DefaultTextFileExtension
}

// IsExecutable checks if a file is executable on the current platform
func IsExecutable(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return false
	}

	if constants.IsWindows() {
		ext := strings.ToLower(filepath.Ext(filePath))
		return ext == ".exe" || ext == ".bat" || ext == ".cmd"
	}
	return info.Mode()&0111 != 0
}

// FindExecutable returns the first candidate that resolves to an executable,
// checking explicit paths first and then PATH lookups.
func FindExecutable(candidates ...string) (string, error) {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if filepath.IsAbs(candidate) {
			if IsExecutable(candidate) {
				return candidate, nil
			}
			continue
		}
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", NewNotFoundError(fmt.Sprintf("none of %v found", candidates), nil)
}
