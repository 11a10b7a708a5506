package constants

import (
	"runtime"
)

// PlatformConfig lists where external conversion tools usually live
type PlatformConfig struct {
	CalibrePaths []string
	UnrtfPaths   []string
}

// GetPlatformConfig returns platform-specific configuration
func GetPlatformConfig() *PlatformConfig {
	switch runtime.GOOS {
	case "windows":
		return &PlatformConfig{
			CalibrePaths: []string{
				"ebook-convert.exe",
				"C:\\Program Files\\Calibre2\\ebook-convert.exe",
				"C:\\Program Files (x86)\\Calibre2\\ebook-convert.exe",
				"C:\\ProgramData\\chocolatey\\bin\\ebook-convert.exe",
			},
			UnrtfPaths: []string{
				"unrtf.exe",
			},
		}
	case "darwin":
		return &PlatformConfig{
			CalibrePaths: []string{
				"/Applications/calibre.app/Contents/MacOS/ebook-convert",
				"ebook-convert",
				"/usr/local/bin/ebook-convert",
				"/opt/homebrew/bin/ebook-convert",
			},
			UnrtfPaths: []string{
				"unrtf",
				"/usr/local/bin/unrtf",
				"/opt/homebrew/bin/unrtf",
			},
		}
	default: // Linux and other Unix-like systems
		return &PlatformConfig{
			CalibrePaths: []string{
				"ebook-convert",
				"/usr/bin/ebook-convert",
				"/usr/local/bin/ebook-convert",
				"/snap/bin/ebook-convert",
				"/opt/calibre/ebook-convert",
			},
			UnrtfPaths: []string{
				"unrtf",
				"/usr/bin/unrtf",
				"/usr/local/bin/unrtf",
			},
		}
	}
}

// IsWindows returns true if running on Windows
func IsWindows() bool {
	return runtime.GOOS == "windows"
}
