package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/interfaces"
)

// PDFConverter extracts the text layer of PDF documents page by page
type PDFConverter struct {
	name string
}

// NewPDFConverter creates a new PDF converter
func NewPDFConverter() *PDFConverter {
	return &PDFConverter{name: "pdf"}
}

// Name returns the name of the converter
func (c *PDFConverter) Name() string {
	return c.name
}

// Accepts checks if this converter supports the given file type
func (c *PDFConverter) Accepts(info interfaces.StreamInfo) bool {
	return hasExtension(info, "pdf") || hasMimePrefix(info, constants.PDFMimeType)
}

// Convert joins the plain text of all pages with blank lines.
// Scanned PDFs without a text layer yield empty text, not an error.
func (c *PDFConverter) Convert(ctx context.Context, r io.ReadSeeker, info interfaces.StreamInfo) (result *interfaces.ConverterResult, err error) {
	data, err := readAll(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("malformed PDF: empty file")
	}

	// The parser panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("malformed PDF: %v", rec)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("malformed PDF: %w", err)
	}

	pages := make([]string, 0, doc.NumPage())
	for i := 1; i <= doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	return &interfaces.ConverterResult{
		TextContent: strings.Join(pages, "\n\n"),
	}, nil
}
