package providers

import (
	"context"
	"io"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/utils"
)

// TextConverter handles plain text and markdown files
type TextConverter struct {
	name string
}

// NewTextConverter creates a new text file converter
func NewTextConverter() *TextConverter {
	return &TextConverter{
		name: "text",
	}
}

// Name returns the name of the converter
func (c *TextConverter) Name() string {
	return c.name
}

// Accepts checks if this converter supports the given file type
func (c *TextConverter) Accepts(info interfaces.StreamInfo) bool {
	if utils.IsHTMLFile(info.Extension, info.MimeType) {
		return false
	}
	return hasExtension(info, constants.TextExtensions...) || utils.IsTextFile(info.Extension, info.MimeType)
}

// Convert returns the file content decoded to UTF-8
func (c *TextConverter) Convert(ctx context.Context, r io.ReadSeeker, info interfaces.StreamInfo) (*interfaces.ConverterResult, error) {
	data, err := readAll(ctx, r)
	if err != nil {
		return nil, err
	}

	return &interfaces.ConverterResult{
		TextContent: decodeText(data, info.MimeType),
	}, nil
}
