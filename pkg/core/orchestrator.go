package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/logger"
	"github.com/nodewee/file-to-text/pkg/types"
	"github.com/nodewee/file-to-text/pkg/utils"
)

// ConversionOrchestrator runs one upload through the pipeline:
// write a transient file, convert it, remove it, and shape the outcome for the UI.
// It never inspects formats itself; that is the converter's job.
type ConversionOrchestrator struct {
	converter   interfaces.FileConverter
	tempManager interfaces.TempFileManager
	logger      *logger.Logger
}

var _ interfaces.Orchestrator = (*ConversionOrchestrator)(nil)

// NewConversionOrchestrator creates an orchestrator
func NewConversionOrchestrator(converter interfaces.FileConverter, tempManager interfaces.TempFileManager, log *logger.Logger) *ConversionOrchestrator {
	return &ConversionOrchestrator{
		converter:   converter,
		tempManager: tempManager,
		logger:      log,
	}
}

// NewRequestContext returns a fresh idle request context
func NewRequestContext() *types.RequestContext {
	return &types.RequestContext{
		ID:         uuid.NewString(),
		ReceivedAt: time.Now(),
		State:      types.StateIdle,
	}
}

// HandleUpload converts blob exactly once for req. On success the effect carries
// a preview and a download; on failure it carries a single error message and nothing else.
func (o *ConversionOrchestrator) HandleUpload(ctx context.Context, req *types.RequestContext, blob types.UploadedBlob) (effect *types.UIEffect) {
	if req == nil {
		req = NewRequestContext()
	}
	log := o.logger.With(logger.Fields{"request_id": req.ID, "filename": blob.Filename})
	effect = &types.UIEffect{Request: req, Filename: blob.Filename}

	if req.State == types.StateProcessed {
		log.Warn("Request already processed, ignoring repeated upload")
		effect.Error = FormatError(utils.NewValidationError("request was already processed", nil))
		return effect
	}
	defer func() { req.State = types.StateProcessed }()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Conversion panicked: %v", rec)
			effect.Preview, effect.Download, effect.NoText = nil, nil, false
			failure := utils.NewSystemError("internal error during conversion", fmt.Errorf("%v", rec)).
				WithContext("request_id", req.ID).
				WithContext("filename", blob.Filename)
			effect.Err = failure
			effect.Error = FormatError(failure)
		}
	}()

	start := time.Now()
	result := o.convert(ctx, blob)
	if !result.OK() {
		failure := utils.WrapError(result.Err, "", "conversion failed").
			WithContext("request_id", req.ID).
			WithContext("filename", blob.Filename).
			WithContext("error_type", utils.GetErrorType(result.Err))
		o.logger.With(utils.ErrorContext(failure)).
			Error("Conversion failed after %s: %v", time.Since(start).Round(time.Millisecond), result.Err)
		effect.Err = failure
		effect.Error = FormatError(result.Err)
		return effect
	}

	preview := RenderPreview(result)
	artifact := BuildDownloadArtifact(blob.Filename, result)
	effect.Preview = &preview
	effect.Download = &artifact
	effect.NoText = strings.TrimSpace(result.Text) == ""

	log.With(logger.Fields{"converter": result.ConverterUsed, "chars": preview.TotalChars}).
		Info("Conversion succeeded in %s", time.Since(start).Round(time.Millisecond))
	if effect.NoText {
		log.Info("No extractable text found")
	}
	return effect
}

// convert materializes the blob as a transient file bound to this single call
func (o *ConversionOrchestrator) convert(ctx context.Context, blob types.UploadedBlob) types.ConversionResult {
	data := blob.Data
	if data == nil {
		data = strings.NewReader("")
	}

	suffix := filepath.Ext(utils.ClientBaseName(blob.Filename))
	var converted *interfaces.ConverterResult
	err := o.tempManager.WithTransientFile(suffix, data, func(path string) error {
		var convErr error
		converted, convErr = o.converter.Convert(ctx, path)
		return convErr
	})
	if err != nil {
		return types.ConversionResult{Err: err}
	}
	if converted == nil {
		return types.ConversionResult{Err: utils.NewConversionError("converter returned no result", nil)}
	}

	return types.ConversionResult{
		Text:          converted.TextContent,
		Title:         converted.Title,
		ConverterUsed: converted.ConverterUsed,
	}
}

// FormatError renders the single user-facing error line
func FormatError(err error) string {
	return fmt.Sprintf("%s: %s", constants.ConversionErrorText, utils.UserMessage(err))
}
