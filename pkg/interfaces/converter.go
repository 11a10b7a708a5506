package interfaces

import (
	"context"
	"io"

	"github.com/nodewee/file-to-text/pkg/types"
)

// StreamInfo holds metadata about the input being converted
type StreamInfo struct {
	Filename  string
	Extension string // lower-case, without the leading dot
	MimeType  string
	LocalPath string // empty for archive entries, which only exist in memory
	Size      int64
}

// ConverterResult holds the output of a conversion
type ConverterResult struct {
	TextContent string `json:"text"`
	Title       string `json:"title,omitempty"`

	// Filled in by the factory, not by format converters
	ConverterUsed       string   `json:"converter_used,omitempty"`
	FallbackUsed        bool     `json:"fallback_used,omitempty"`
	AttemptedConverters []string `json:"attempted_converters,omitempty"`
}

// DocumentConverter is implemented by every format handler
type DocumentConverter interface {
	// Name returns the converter name for logging
	Name() string

	// Accepts reports whether this converter can handle the input.
	// It must not read from the stream.
	Accepts(info StreamInfo) bool

	// Convert extracts text from the stream
	Convert(ctx context.Context, r io.ReadSeeker, info StreamInfo) (*ConverterResult, error)
}

// StreamConverter dispatches a stream to whichever registered converter accepts it
type StreamConverter interface {
	ConvertStream(ctx context.Context, r io.ReadSeeker, info StreamInfo) (*ConverterResult, error)
}

// ConverterFactory keeps the ordered converter chain
type ConverterFactory interface {
	StreamConverter

	// Register appends a converter; earlier registrations are tried first
	Register(converter DocumentConverter)

	// ConvertersFor returns the accepting converters in the order they are tried
	ConvertersFor(info StreamInfo) []DocumentConverter

	// ListConverters returns the names of all registered converters
	ListConverters() []string
}

// FileConverter converts a file on disk to text
type FileConverter interface {
	// Convert reads the file at path and returns the extracted text
	Convert(ctx context.Context, path string) (*ConverterResult, error)
}

// Orchestrator runs the upload -> convert -> present pipeline for one request
type Orchestrator interface {
	HandleUpload(ctx context.Context, req *types.RequestContext, blob types.UploadedBlob) *types.UIEffect
}
