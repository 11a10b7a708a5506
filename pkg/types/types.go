package types

import (
	"io"
	"time"
)

// MediaType represents different types of media files
type MediaType string

const (
	DocumentMediaType    MediaType = "document"
	SpreadsheetMediaType MediaType = "spreadsheet"
	SlidesMediaType      MediaType = "presentation"
	ArchiveMediaType     MediaType = "archive"
	TextMediaType        MediaType = "text"
)

// RequestState is the lifecycle state of a single upload request
type RequestState string

const (
	StateIdle      RequestState = "idle"      // no upload handled yet
	StateProcessed RequestState = "processed" // conversion attempted exactly once
)

// FileInfo contains basic information about a file
type FileInfo struct {
	MD5Hash   string    `json:"md5_hash"`
	Extension string    `json:"extension"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	MediaType MediaType `json:"media_type"`
}

// UploadedBlob is the raw upload handed over by the UI layer.
// Filename is the client-declared name and carries the extension.
type UploadedBlob struct {
	Filename string
	Data     io.Reader
	Size     int64
}

// RequestContext carries per-request state through the orchestrator.
type RequestContext struct {
	ID         string       `json:"request_id"`
	ReceivedAt time.Time    `json:"received_at"`
	State      RequestState `json:"state"`
}

// ConversionResult is either extracted text or the reason extraction failed.
type ConversionResult struct {
	Text          string
	Title         string
	ConverterUsed string
	Err           error
}

// OK reports whether the conversion produced text (possibly empty)
func (r ConversionResult) OK() bool {
	return r.Err == nil
}

// PreviewText is the truncated head of a conversion result
type PreviewText struct {
	Text       string `json:"text"`
	Truncated  bool   `json:"truncated"`
	TotalChars int    `json:"total_chars"`
}

// DownloadArtifact is the full conversion text packaged for download
type DownloadArtifact struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Label       string `json:"label"`
	Data        []byte `json:"-"`
}

// UIEffect is everything the UI needs to render the outcome of one upload.
// Error is set alone on failure; Preview and Download are set together on success.
type UIEffect struct {
	Request  *RequestContext   `json:"request"`
	Filename string            `json:"filename"`
	Preview  *PreviewText      `json:"preview,omitempty"`
	Download *DownloadArtifact `json:"download,omitempty"`
	Error    string            `json:"error,omitempty"`
	Err      error             `json:"-"`
	NoText   bool              `json:"no_text,omitempty"`
}

// Failed reports whether the request ended with a user-visible error
func (e *UIEffect) Failed() bool {
	return e.Error != ""
}
