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

// PptxConverter extracts slide text from PowerPoint presentations
type PptxConverter struct {
	name string
}

// NewPptxConverter creates a new PPTX converter
func NewPptxConverter() *PptxConverter {
	return &PptxConverter{name: "pptx"}
}

// Name returns the name of the converter
func (c *PptxConverter) Name() string {
	return c.name
}

// Accepts checks if this converter supports the given file type
func (c *PptxConverter) Accepts(info interfaces.StreamInfo) bool {
	return hasExtension(info, "pptx") || hasMimePrefix(info, constants.PptxMimeType)
}

// Convert extracts the text of every slide
func (c *PptxConverter) Convert(ctx context.Context, r io.ReadSeeker, info interfaces.StreamInfo) (*interfaces.ConverterResult, error) {
	data, err := readAll(ctx, r)
	if err != nil {
		return nil, err
	}

	text, meta, err := docconv.ConvertPptx(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read presentation: %w", err)
	}

	return &interfaces.ConverterResult{
		TextContent: strings.TrimSpace(text),
		Title:       metaTitle(meta),
	}, nil
}
