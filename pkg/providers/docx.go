package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv/v2"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/interfaces"
)

// DocxConverter extracts text from Word documents
type DocxConverter struct {
	name string
}

// NewDocxConverter creates a new DOCX converter
func NewDocxConverter() *DocxConverter {
	return &DocxConverter{name: "docx"}
}

// Name returns the name of the converter
func (c *DocxConverter) Name() string {
	return c.name
}

// Accepts checks if this converter supports the given file type
func (c *DocxConverter) Accepts(info interfaces.StreamInfo) bool {
	return hasExtension(info, "docx") || hasMimePrefix(info, constants.DocxMimeType)
}

// Convert extracts header, body and footer text
func (c *DocxConverter) Convert(ctx context.Context, r io.ReadSeeker, info interfaces.StreamInfo) (*interfaces.ConverterResult, error) {
	data, err := readAll(ctx, r)
	if err != nil {
		return nil, err
	}

	text, meta, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read Word document: %w", err)
	}

	return &interfaces.ConverterResult{
		TextContent: strings.TrimSpace(text),
		Title:       metaTitle(meta),
	}, nil
}

// metaTitle picks the document title out of docconv metadata, if any
func metaTitle(meta map[string]string) string {
	for _, key := range []string{"Title", "title", "dc:title"} {
		if title := strings.TrimSpace(meta[key]); title != "" {
			return title
		}
	}
	return ""
}
