package core

import (
	"context"
	"fmt"
	"io"

	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/logger"
	"github.com/nodewee/file-to-text/pkg/utils"
)

// DefaultConverterFactory keeps converters in registration order and tries
// every accepting one until the first success.
type DefaultConverterFactory struct {
	converters []interfaces.DocumentConverter
	logger     *logger.Logger
}

var _ interfaces.ConverterFactory = (*DefaultConverterFactory)(nil)

// NewConverterFactory creates an empty converter factory
func NewConverterFactory(log *logger.Logger) *DefaultConverterFactory {
	return &DefaultConverterFactory{logger: log}
}

// Register appends a converter to the chain
func (f *DefaultConverterFactory) Register(converter interfaces.DocumentConverter) {
	f.converters = append(f.converters, converter)
	f.logger.Debug("Registered converter: %s", converter.Name())
}

// ListConverters returns the names of all registered converters in order
func (f *DefaultConverterFactory) ListConverters() []string {
	names := make([]string, 0, len(f.converters))
	for _, c := range f.converters {
		names = append(names, c.Name())
	}
	return names
}

// ConvertersFor returns the accepting converters in the order they are tried
func (f *DefaultConverterFactory) ConvertersFor(info interfaces.StreamInfo) []interfaces.DocumentConverter {
	var chain []interfaces.DocumentConverter
	for _, c := range f.converters {
		if c.Accepts(info) {
			chain = append(chain, c)
		} else {
			f.logger.Debug("Converter '%s' does not support file type %s", c.Name(), info.Extension)
		}
	}
	return chain
}

// ConvertStream runs the fallback chain for one input
func (f *DefaultConverterFactory) ConvertStream(ctx context.Context, r io.ReadSeeker, info interfaces.StreamInfo) (*interfaces.ConverterResult, error) {
	chain := f.ConvertersFor(info)
	if len(chain) == 0 {
		return nil, utils.NewUnsupportedError(
			fmt.Sprintf("unsupported file type: %s", describeType(info)), nil)
	}

	var (
		lastErr   error
		attempted []string
	)
	for i, converter := range chain {
		if err := ctx.Err(); err != nil {
			return nil, utils.WrapError(err, utils.ErrorTypeTimeout, "conversion cancelled")
		}

		name := converter.Name()
		attempted = append(attempted, name)
		if i > 0 {
			f.logger.Warn("Converter '%s' failed, trying fallback: %s", chain[i-1].Name(), name)
		}

		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, utils.NewIOError("failed to rewind input", err)
		}

		result, err := converter.Convert(ctx, r, info)
		if err != nil {
			f.logger.Debug("Converter '%s' failed on %s: %v", name, info.Filename, err)
			lastErr = err
			continue
		}

		result.ConverterUsed = name
		result.FallbackUsed = i > 0
		result.AttemptedConverters = attempted
		return result, nil
	}

	if len(attempted) == 1 {
		return nil, utils.WrapError(lastErr, utils.ErrorTypeConversion,
			fmt.Sprintf("%s conversion failed", attempted[0]))
	}
	return nil, utils.WrapError(lastErr, utils.ErrorTypeConversion,
		fmt.Sprintf("all converters failed (%v), last error", attempted))
}

func describeType(info interfaces.StreamInfo) string {
	switch {
	case info.Extension != "":
		return "." + info.Extension
	case info.MimeType != "":
		return info.MimeType
	default:
		return "unknown"
	}
}
