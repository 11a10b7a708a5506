package utils

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/types"
)

// extensionMimeTypes covers formats the platform MIME table may not know
var extensionMimeTypes = map[string]string{
	"docx":     constants.DocxMimeType,
	"xlsx":     constants.XlsxMimeType,
	"pptx":     constants.PptxMimeType,
	"pdf":      constants.PDFMimeType,
	"rtf":      constants.RTFMimeType,
	"zip":      constants.ZipMimeType,
	"html":     constants.HTMLMimeType,
	"htm":      constants.HTMLMimeType,
	"md":       "text/markdown",
	"markdown": "text/markdown",
	"txt":      "text/plain",
}

// GetFileInfo gets comprehensive file information
func GetFileInfo(filePath string) (*types.FileInfo, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}

	md5Hash, err := CalculateFileMD5(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate file hash: %w", err)
	}

	extension := ExtensionOf(filePath)

	mimeType := MimeTypeByExtension(extension)
	if mimeType == "" {
		mimeType, err = getMimeType(filePath)
		if err != nil {
			mimeType = "application/octet-stream"
		}
	}

	return &types.FileInfo{
		MD5Hash:   md5Hash,
		Extension: extension,
		MimeType:  mimeType,
		Size:      stat.Size(),
		MediaType: determineMediaType(extension, mimeType),
	}, nil
}

// ExtensionOf returns the lower-case extension of name without the leading dot
func ExtensionOf(name string) string {
	extension := strings.ToLower(filepath.Ext(name))
	return strings.TrimPrefix(extension, ".")
}

// MimeTypeByExtension maps an extension (with or without dot) to a MIME type, "" if unknown
func MimeTypeByExtension(extension string) string {
	extension = strings.TrimPrefix(strings.ToLower(extension), ".")
	if extension == "" {
		return ""
	}
	if mimeType, ok := extensionMimeTypes[extension]; ok {
		return mimeType
	}
	if mimeType := mime.TypeByExtension("." + extension); mimeType != "" {
		if base, _, err := mime.ParseMediaType(mimeType); err == nil {
			return base
		}
		return mimeType
	}
	return ""
}

// SniffMimeType detects MIME type from the first bytes of r and rewinds it
func SniffMimeType(r io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(r, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buffer[:n]), nil
}

// getMimeType detects MIME type from file content
func getMimeType(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	return SniffMimeType(file)
}

// IsTextFile checks if file is a text file
func IsTextFile(extension, mimeType string) bool {
	if containsFold(constants.TextExtensions, extension) {
		return true
	}
	for _, pattern := range constants.TextMimePatterns {
		if strings.HasPrefix(mimeType, pattern) && !IsHTMLFile(extension, mimeType) {
			return true
		}
	}
	return false
}

// IsHTMLFile checks if file is an HTML document
func IsHTMLFile(extension, mimeType string) bool {
	return containsFold(constants.HTMLExtensions, extension) ||
		strings.HasPrefix(mimeType, constants.HTMLMimeType) ||
		strings.HasPrefix(mimeType, "application/xhtml")
}

// determineMediaType determines media type from extension and MIME type
func determineMediaType(extension, mimeType string) types.MediaType {
	switch {
	case extension == "xlsx" || mimeType == constants.XlsxMimeType:
		return types.SpreadsheetMediaType
	case extension == "pptx" || mimeType == constants.PptxMimeType:
		return types.SlidesMediaType
	case extension == "zip" || mimeType == constants.ZipMimeType:
		return types.ArchiveMediaType
	case IsTextFile(extension, mimeType):
		return types.TextMediaType
	default:
		return types.DocumentMediaType
	}
}

func containsFold(values []string, value string) bool {
	for _, v := range values {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}
