package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nodewee/file-to-text/pkg/config"
	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/logger"
	"github.com/nodewee/file-to-text/pkg/providers"
	"github.com/nodewee/file-to-text/pkg/utils"
)

// Options selects the converter chain
type Options struct {
	// EnablePlugins adds converters that run external tools (Calibre, a
	// markitdown container). Off by default so output only depends on the input.
	EnablePlugins  bool
	CalibrePath    string
	ContainerImage string
}

// OptionsFromConfig builds converter options from the conversion settings
func OptionsFromConfig(cfg config.ConversionConfig) Options {
	return Options{
		EnablePlugins:  cfg.EnablePlugins,
		CalibrePath:    cfg.CalibrePath,
		ContainerImage: cfg.ContainerImage,
	}
}

// DefaultFileProcessor converts files on disk through the converter chain
type DefaultFileProcessor struct {
	options     Options
	logger      *logger.Logger
	factory     *DefaultConverterFactory
	tempManager interfaces.TempFileManager
}

var _ interfaces.FileConverter = (*DefaultFileProcessor)(nil)

// NewFileProcessor creates a processor with the built-in converters and, when
// enabled, the plugin converters after them
func NewFileProcessor(opts Options, tempManager interfaces.TempFileManager, log *logger.Logger) *DefaultFileProcessor {
	p := &DefaultFileProcessor{
		options:     opts,
		logger:      log,
		factory:     NewConverterFactory(log),
		tempManager: tempManager,
	}
	p.registerDefaultConverters()
	return p
}

// registerDefaultConverters registers the default set of converters
func (p *DefaultFileProcessor) registerDefaultConverters() {
	p.factory.Register(providers.NewTextConverter())
	p.factory.Register(providers.NewHTMLConverter())
	p.factory.Register(providers.NewDocxConverter())
	p.factory.Register(providers.NewPptxConverter())
	p.factory.Register(providers.NewXlsxConverter())
	p.factory.Register(providers.NewPDFConverter())
	p.factory.Register(providers.NewRTFConverter(p.options.EnablePlugins))
	p.factory.Register(providers.NewZipConverter(p.factory, p.logger))

	if p.options.EnablePlugins {
		p.factory.Register(providers.NewCalibreConverter(p.options.CalibrePath, p.tempManager, p.logger))
		if p.options.ContainerImage != "" {
			p.factory.Register(providers.NewMarkitdownConverter(p.options.ContainerImage, p.logger))
		}
	}

	p.logger.Debug("Registered %d converters: %v", len(p.factory.ListConverters()), p.factory.ListConverters())
}

// Factory exposes the converter chain
func (p *DefaultFileProcessor) Factory() interfaces.ConverterFactory {
	return p.factory
}

// Convert converts the file at path. Unsupported or unreadable input is an error;
// a readable file without text is a success with empty content.
func (p *DefaultFileProcessor) Convert(ctx context.Context, path string) (*interfaces.ConverterResult, error) {
	if err := p.validateInputFile(path); err != nil {
		return nil, err
	}

	fileInfo, err := utils.GetFileInfo(path)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to get file info")
	}

	p.logger.Debug("File analysis: extension=%s mime=%s size=%d md5=%s media=%s",
		fileInfo.Extension, fileInfo.MimeType, fileInfo.Size, fileInfo.MD5Hash, fileInfo.MediaType)
	if fileInfo.Size > constants.WarnFileSizeLimit {
		p.logger.Warn("Large file detected (%d bytes), processing may take longer", fileInfo.Size)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, utils.NewIOError("cannot read input file", err)
	}
	defer file.Close()

	p.logger.Progress("🔍", "Converting %s (%s)", filepath.Base(path), fileInfo.MimeType)
	result, err := p.factory.ConvertStream(ctx, file, interfaces.StreamInfo{
		Filename:  filepath.Base(path),
		Extension: fileInfo.Extension,
		MimeType:  fileInfo.MimeType,
		LocalPath: path,
		Size:      fileInfo.Size,
	})
	if err != nil {
		return nil, err
	}

	if result.FallbackUsed {
		p.logger.Progress("⚠️", "Fallback converter '%s' was used (attempted: %v)", result.ConverterUsed, result.AttemptedConverters)
	}
	p.logger.Progress("✅", "Converter '%s' succeeded", result.ConverterUsed)
	return result, nil
}

// validateInputFile validates the input file
func (p *DefaultFileProcessor) validateInputFile(path string) error {
	if path == "" {
		return utils.NewValidationError("input file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return utils.NewNotFoundError(fmt.Sprintf("input file not found: %s", path), err)
	}
	if err != nil {
		return utils.NewIOError("cannot access input file", err)
	}
	if info.IsDir() {
		return utils.NewValidationError(fmt.Sprintf("input is a directory: %s", path), nil)
	}
	return nil
}
