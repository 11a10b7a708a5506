package providers

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/logger"
	"github.com/nodewee/file-to-text/pkg/utils"
)

// calibreExtensions are the formats handed to ebook-convert
var calibreExtensions = append([]string{
	"pdf", "doc", "docx", "rtf", "odt", "html", "htm", "txt",
}, constants.EbookExtensions...)

// CalibreConverter is a plugin converter backed by Calibre's ebook-convert.
// It needs a file on disk, so archive entries are materialized first.
type CalibreConverter struct {
	name        string
	calibrePath string
	tempManager interfaces.TempFileManager
	logger      *logger.Logger

	resolveOnce sync.Once
	resolved    string
	resolveErr  error
}

// NewCalibreConverter creates a Calibre plugin; an empty calibrePath means auto-detect
func NewCalibreConverter(calibrePath string, tempManager interfaces.TempFileManager, log *logger.Logger) *CalibreConverter {
	return &CalibreConverter{
		name:        "calibre",
		calibrePath: calibrePath,
		tempManager: tempManager,
		logger:      log,
	}
}

// Name returns the name of the converter
func (c *CalibreConverter) Name() string {
	return c.name
}

// Accepts checks if this converter can handle the file as fallback
func (c *CalibreConverter) Accepts(info interfaces.StreamInfo) bool {
	return hasExtension(info, calibreExtensions...)
}

// Convert runs ebook-convert into a temporary .txt file and returns its content
func (c *CalibreConverter) Convert(ctx context.Context, r io.ReadSeeker, info interfaces.StreamInfo) (*interfaces.ConverterResult, error) {
	binary, err := c.findCalibrePath()
	if err != nil {
		return nil, err
	}

	if info.LocalPath != "" {
		return c.convertFile(ctx, binary, info.LocalPath)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind input: %w", err)
	}
	var result *interfaces.ConverterResult
	err = c.tempManager.WithTransientFile("."+info.Extension, r, func(path string) error {
		var convErr error
		result, convErr = c.convertFile(ctx, binary, path)
		return convErr
	})
	return result, err
}

func (c *CalibreConverter) convertFile(ctx context.Context, binary, inputFile string) (*interfaces.ConverterResult, error) {
	c.logger.Progress("📖", "Attempting Calibre extraction for: %s", inputFile)

	outputFile, err := c.tempManager.CreateTempFile("calibre-", constants.DefaultTextFileExtension)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary output file: %w", err)
	}
	defer func() {
		if err := c.tempManager.Remove(outputFile); err != nil {
			c.logger.Warn("Failed to remove calibre output: %v", err)
		}
	}()

	cmd := exec.CommandContext(ctx, binary, inputFile, outputFile)
	output, err := cmd.CombinedOutput()
	if err != nil {
		c.logger.Error("Calibre conversion failed: %s", strings.TrimSpace(string(output)))
		return nil, fmt.Errorf("calibre extraction failed: %w", err)
	}

	content, err := os.ReadFile(outputFile)
	if err != nil {
		return nil, fmt.Errorf("error reading calibre-converted file: %w", err)
	}

	c.logger.Progress("✅", "Calibre extraction completed")
	return &interfaces.ConverterResult{
		TextContent: strings.TrimSpace(decodeText(content, "text/plain")),
	}, nil
}

// findCalibrePath resolves ebook-convert once, preferring the configured path
func (c *CalibreConverter) findCalibrePath() (string, error) {
	c.resolveOnce.Do(func() {
		candidates := append([]string{c.calibrePath}, constants.GetPlatformConfig().CalibrePaths...)
		c.resolved, c.resolveErr = utils.FindExecutable(candidates...)
		if c.resolveErr != nil {
			c.resolveErr = utils.NewNotFoundError("Calibre ebook-convert command not found. Please install Calibre first:\n"+
				"  - macOS: brew install calibre\n"+
				"  - Ubuntu/Debian: sudo apt-get install calibre\n"+
				"  - Windows: Download from https://calibre-ebook.com/download", c.resolveErr)
		}
	})
	return c.resolved, c.resolveErr
}
