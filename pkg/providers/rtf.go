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
	"github.com/nodewee/file-to-text/pkg/utils"
)

// RTFConverter extracts text from RTF documents. By default it reads the
// control words itself; with external tools enabled it hands the document
// to docconv, which shells out to unrtf.
type RTFConverter struct {
	name        string
	useExternal bool
	lookPath    func() (string, error)
}

// NewRTFConverter creates a new RTF converter. useExternal turns on the unrtf path.
func NewRTFConverter(useExternal bool) *RTFConverter {
	return &RTFConverter{
		name:        "rtf",
		useExternal: useExternal,
		lookPath: func() (string, error) {
			return utils.FindExecutable(constants.GetPlatformConfig().UnrtfPaths...)
		},
	}
}

// Name returns the name of the converter
func (c *RTFConverter) Name() string {
	return c.name
}

// Accepts checks if this converter supports the given file type
func (c *RTFConverter) Accepts(info interfaces.StreamInfo) bool {
	return hasExtension(info, "rtf") || hasMimePrefix(info, constants.RTFMimeType, "text/rtf")
}

// Convert extracts plain text from the RTF stream.
// A missing unrtf binary falls back to the built-in reader.
func (c *RTFConverter) Convert(ctx context.Context, r io.ReadSeeker, info interfaces.StreamInfo) (*interfaces.ConverterResult, error) {
	data, err := readAll(ctx, r)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte(`{\rtf`)) {
		return nil, fmt.Errorf("not an RTF document")
	}

	if c.useExternal {
		if _, err := c.lookPath(); err == nil {
			return convertWithUnrtf(data)
		}
	}

	text, err := stripRTF(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read RTF document: %w", err)
	}
	return &interfaces.ConverterResult{
		TextContent: cleanupText(text),
	}, nil
}

func convertWithUnrtf(data []byte) (*interfaces.ConverterResult, error) {
	text, meta, err := docconv.ConvertRTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read RTF document: %w", err)
	}

	return &interfaces.ConverterResult{
		TextContent: strings.TrimSpace(text),
		Title:       metaTitle(meta),
	}, nil
}
