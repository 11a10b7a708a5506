package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/interfaces"
)

// XlsxConverter renders every worksheet as a markdown table
type XlsxConverter struct {
	name string
}

// NewXlsxConverter creates a new XLSX converter
func NewXlsxConverter() *XlsxConverter {
	return &XlsxConverter{name: "xlsx"}
}

// Name returns the name of the converter
func (c *XlsxConverter) Name() string {
	return c.name
}

// Accepts checks if this converter supports the given file type
func (c *XlsxConverter) Accepts(info interfaces.StreamInfo) bool {
	return hasExtension(info, "xlsx") || hasMimePrefix(info, constants.XlsxMimeType)
}

// Convert renders sheets in workbook order, each under a "## <sheet>" heading
func (c *XlsxConverter) Convert(ctx context.Context, r io.ReadSeeker, info interfaces.StreamInfo) (*interfaces.ConverterResult, error) {
	data, err := readAll(ctx, r)
	if err != nil {
		return nil, err
	}

	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer book.Close()

	var sb strings.Builder
	for _, sheet := range book.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := book.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("## " + sheet + "\n")
		writeMarkdownTable(&sb, rows)
	}

	return &interfaces.ConverterResult{
		TextContent: strings.TrimSpace(sb.String()),
	}, nil
}

// writeMarkdownTable writes rows as a pipe table, the first row being the header.
// Ragged rows are padded to the widest row.
func writeMarkdownTable(sb *strings.Builder, rows [][]string) {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return
	}

	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(cells) {
				cell = escapeTableCell(cells[i])
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}

	writeRow(rows[0])
	sb.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
}

func escapeTableCell(cell string) string {
	cell = strings.ReplaceAll(cell, "|", `\|`)
	cell = strings.ReplaceAll(cell, "\r\n", " ")
	return strings.ReplaceAll(cell, "\n", " ")
}
