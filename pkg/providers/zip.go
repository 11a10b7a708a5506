package providers

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/logger"
	"github.com/nodewee/file-to-text/pkg/utils"
)

type (
	zipDepthKey  struct{}
	zipBudgetKey struct{}
)

// zipBudget is shared by an archive and every archive nested in it
type zipBudget struct {
	entries int
	size    int64
}

func (b *zipBudget) check(maxEntries int, maxSize int64) error {
	if b.entries > maxEntries {
		return utils.NewTooLargeError(fmt.Sprintf("archive holds more than %d files", maxEntries), nil)
	}
	if b.size > maxSize {
		return utils.NewTooLargeError(fmt.Sprintf("archive expands past %d bytes", maxSize), nil)
	}
	return nil
}

// ZipConverter converts every supported entry of a ZIP archive through the
// same converter chain and concatenates the results under per-file headings.
// Entries nothing can convert are skipped.
type ZipConverter struct {
	name         string
	dispatch     interfaces.StreamConverter
	maxEntries   int
	maxTotalSize int64
	logger       *logger.Logger
}

// NewZipConverter creates a ZIP converter that hands entries to dispatch
func NewZipConverter(dispatch interfaces.StreamConverter, log *logger.Logger) *ZipConverter {
	return &ZipConverter{
		name:         "zip",
		dispatch:     dispatch,
		maxEntries:   constants.MaxZipEntries,
		maxTotalSize: constants.MaxZipTotalSize,
		logger:       log,
	}
}

// Name returns the name of the converter
func (c *ZipConverter) Name() string {
	return c.name
}

// Accepts checks if this converter supports the given file type
func (c *ZipConverter) Accepts(info interfaces.StreamInfo) bool {
	return hasExtension(info, "zip") || hasMimePrefix(info, constants.ZipMimeType, "application/x-zip")
}

// Convert walks the archive in stored order. Entry count and the bytes read
// plus text produced are capped across the whole nesting tree.
func (c *ZipConverter) Convert(ctx context.Context, r io.ReadSeeker, info interfaces.StreamInfo) (*interfaces.ConverterResult, error) {
	depth, _ := ctx.Value(zipDepthKey{}).(int)
	if depth >= constants.MaxZipDepth {
		return nil, fmt.Errorf("archive nesting exceeds %d levels", constants.MaxZipDepth)
	}
	ctx = context.WithValue(ctx, zipDepthKey{}, depth+1)

	budget, _ := ctx.Value(zipBudgetKey{}).(*zipBudget)
	if budget == nil {
		budget = &zipBudget{}
		ctx = context.WithValue(ctx, zipBudgetKey{}, budget)
	}

	data, err := readAll(ctx, r)
	if err != nil {
		return nil, err
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open ZIP archive: %w", err)
	}

	var sb strings.Builder

	for _, entry := range archive.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.FileInfo().IsDir() {
			continue
		}

		budget.entries++
		if err := budget.check(c.maxEntries, c.maxTotalSize); err != nil {
			return nil, err
		}

		text, read, err := c.convertEntry(ctx, entry)
		budget.size += read + int64(len(text))
		if err := budget.check(c.maxEntries, c.maxTotalSize); err != nil {
			return nil, err
		}
		if err != nil {
			c.logger.Debug("Skipping archive entry %s: %v", entry.Name, err)
			continue
		}

		fmt.Fprintf(&sb, "## File: %s\n\n%s\n\n", entry.Name, strings.TrimSpace(text))
	}

	return &interfaces.ConverterResult{
		TextContent: strings.TrimSpace(sb.String()),
	}, nil
}

// convertEntry returns the entry text and the number of bytes it decompressed
func (c *ZipConverter) convertEntry(ctx context.Context, entry *zip.File) (string, int64, error) {
	if entry.UncompressedSize64 > constants.MaxZipEntrySize {
		return "", 0, utils.NewTooLargeError(fmt.Sprintf("entry exceeds %d bytes", constants.MaxZipEntrySize), nil)
	}

	rc, err := entry.Open()
	if err != nil {
		return "", 0, err
	}
	defer rc.Close()

	// Header sizes are not trusted; the read is capped as well
	content, err := io.ReadAll(io.LimitReader(rc, constants.MaxZipEntrySize+1))
	read := int64(len(content))
	if err != nil {
		return "", read, err
	}
	if read > constants.MaxZipEntrySize {
		return "", read, utils.NewTooLargeError(fmt.Sprintf("entry exceeds %d bytes", constants.MaxZipEntrySize), nil)
	}

	extension := utils.ExtensionOf(entry.Name)
	result, err := c.dispatch.ConvertStream(ctx, bytes.NewReader(content), interfaces.StreamInfo{
		Filename:  entry.Name,
		Extension: extension,
		MimeType:  utils.MimeTypeByExtension(extension),
		Size:      int64(len(content)),
	})
	if err != nil {
		return "", read, err
	}
	return result.TextContent, read, nil
}
