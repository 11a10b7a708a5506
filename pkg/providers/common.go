package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/nodewee/file-to-text/pkg/interfaces"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readAll rewinds r and reads it fully, giving up early if ctx is done
func readAll(ctx context.Context, r io.ReadSeeker) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind input: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// decodeText returns data as UTF-8, sniffing the source encoding when it is not UTF-8 already
func decodeText(data []byte, contentType string) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// Undecodable input keeps its bytes with invalid sequences replaced
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(decoded)
}

// hasExtension reports whether info's extension is one of exts
func hasExtension(info interfaces.StreamInfo, exts ...string) bool {
	for _, ext := range exts {
		if strings.EqualFold(info.Extension, ext) {
			return true
		}
	}
	return false
}

// hasMimePrefix reports whether info's MIME type starts with one of prefixes
func hasMimePrefix(info interfaces.StreamInfo, prefixes ...string) bool {
	mimeType := strings.ToLower(info.MimeType)
	if mimeType == "" {
		return false
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}
