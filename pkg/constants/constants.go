package constants

// Application constants
const (
	AppName  = "file-to-text"
	AppTitle = "Universal File to Text Converter"
	// Note: the version is injected at build time via ldflags in main.go
)

// File processing constants
const (
	// Default file permissions
	DefaultFilePermission = 0644
	DefaultDirPermission  = 0755

	// Transient upload files
	TransientFilePrefix = "upload-"

	// Text processing
	DefaultTextFileExtension = ".txt"
	PlainTextContentType     = "text/plain"
)

// Presentation constants
const (
	PreviewCharLimit    = 1000
	PreviewHeightPixels = 300
	DownloadLabel       = "Download Full Text"
	DownloadHelp        = "Click to download the complete converted text file."
	PreviewHeading      = "Text Preview (First 1000 characters)"
	ConversionErrorText = "Error converting file"
	NoTextNotice        = "No extractable text was found in this file."
)

// Upload limits (in bytes)
const (
	DefaultMaxUploadMB = 200
	MaxZipEntrySize    = 50 * 1024 * 1024 // 50MB
	MaxZipDepth        = 3
	MaxZipEntries      = 1000
	MaxZipTotalSize    = 100 * 1024 * 1024 // 100MB read plus text produced, whole archive tree
	WarnFileSizeLimit  = 10 * 1024 * 1024  // 10MB
)

// AllowedExtensions is the upload widget allow-list, without leading dots
var AllowedExtensions = []string{
	"docx", "xlsx", "pptx", "html", "txt", "zip", "pdf", "rtf", "md",
}

// File type groups
var (
	TextExtensions = []string{
		"txt", "text", "md", "markdown", "csv", "json", "xml", "log",
	}

	HTMLExtensions = []string{
		"html", "htm", "xhtml",
	}

	EbookExtensions = []string{
		"epub", "mobi", "azw3", "fb2",
	}
)

// MIME type patterns
var (
	TextMimePatterns = []string{
		"text/", "application/json", "application/xml",
		"application/csv",
	}

	DocxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	XlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	PptxMimeType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	PDFMimeType  = "application/pdf"
	RTFMimeType  = "application/rtf"
	ZipMimeType  = "application/zip"
	HTMLMimeType = "text/html"
)
