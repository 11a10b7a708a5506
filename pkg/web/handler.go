package web

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/logger"
	"github.com/nodewee/file-to-text/pkg/types"
	"github.com/nodewee/file-to-text/pkg/utils"
)

// multipartMemory is how much of an upload is kept in memory before
// mime/multipart spills it to disk
const multipartMemory = 32 << 20

var allowedExtensions = func() []interface{} {
	values := make([]interface{}, len(constants.AllowedExtensions))
	for i, ext := range constants.AllowedExtensions {
		values[i] = ext
	}
	return values
}()

// ConverterLister reports the registered converter names
type ConverterLister interface {
	ListConverters() []string
}

// Handler serves the upload page and the JSON API
type Handler struct {
	orchestrator   interfaces.Orchestrator
	converters     ConverterLister
	maxUploadBytes int64
	version        string
	logger         *logger.Logger
}

// NewHandler creates a new handler
func NewHandler(orchestrator interfaces.Orchestrator, converters ConverterLister, maxUploadBytes int64, version string, log *logger.Logger) *Handler {
	return &Handler{
		orchestrator:   orchestrator,
		converters:     converters,
		maxUploadBytes: maxUploadBytes,
		version:        version,
		logger:         log,
	}
}

// ConvertResponse is the JSON form of a successful conversion
type ConvertResponse struct {
	RequestID        string                  `json:"request_id"`
	Filename         string                  `json:"filename"`
	Preview          string                  `json:"preview"`
	PreviewTruncated bool                    `json:"preview_truncated"`
	TotalChars       int                     `json:"total_chars"`
	NoText           bool                    `json:"no_text"`
	Download         *types.DownloadArtifact `json:"download"`
	Text             string                  `json:"text"`
}

// Index renders the empty upload page.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, newPageData())
}

// Upload converts the posted file and renders the page with its outcome.
// POST /
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	effect, err := h.handleUpload(w, r)
	if err != nil {
		page := newPageData()
		page.Error = utils.UserMessage(err)
		renderPage(w, statusForError(err), page)
		return
	}
	renderPage(w, http.StatusOK, newPageData().withEffect(effect))
}

// Convert converts the posted file and returns preview, download metadata and text.
// POST /api/convert
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	effect, err := h.handleUpload(w, r)
	if err != nil {
		RespondAppError(w, err)
		return
	}
	if effect.Failed() {
		RespondErrorWithExtras(w, http.StatusUnprocessableEntity, effect.Error, utils.ErrorContext(effect.Err))
		return
	}

	RespondJSON(w, http.StatusOK, ConvertResponse{
		RequestID:        effect.Request.ID,
		Filename:         effect.Filename,
		Preview:          effect.Preview.Text,
		PreviewTruncated: effect.Preview.Truncated,
		TotalChars:       effect.Preview.TotalChars,
		NoText:           effect.NoText,
		Download:         effect.Download,
		Text:             string(effect.Download.Data),
	})
}

// Download converts the posted file and returns the full text as an attachment.
// POST /api/convert/download
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	effect, err := h.handleUpload(w, r)
	if err != nil {
		RespondAppError(w, err)
		return
	}
	if effect.Failed() {
		RespondError(w, http.StatusUnprocessableEntity, effect.Error)
		return
	}

	artifact := effect.Download
	w.Header().Set("Content-Type", artifact.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

// Formats lists the accepted extensions and the registered converters.
// GET /api/formats
func (h *Handler) Formats(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"extensions": constants.AllowedExtensions,
		"converters": h.converters.ListConverters(),
	})
}

// HealthCheck is a simple health check endpoint.
// GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"time":    time.Now().UTC(),
	})
}

// handleUpload reads the multipart upload and runs it through the orchestrator.
// The returned error covers request problems only; conversion failures are in the effect.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) (*types.UIEffect, error) {
	file, header, err := h.readUpload(w, r)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	req := &types.RequestContext{
		ID:         GetRequestID(r.Context()),
		ReceivedAt: time.Now(),
		State:      types.StateIdle,
	}
	if req.ID == "" {
		req = nil
	}

	h.logger.With(logger.Fields{"filename": header.Filename, "size": header.Size}).Debug("Upload received")
	effect := h.orchestrator.HandleUpload(r.Context(), req, types.UploadedBlob{
		Filename: header.Filename,
		Data:     file,
		Size:     header.Size,
	})
	return effect, nil
}

// readUpload enforces the size limit and the extension allow-list
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, nil, utils.NewTooLargeError(
				fmt.Sprintf("file exceeds the upload limit of %d MB", h.maxUploadBytes>>20), err)
		}
		return nil, nil, utils.NewValidationError("failed to parse multipart form", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, utils.NewValidationError("no file provided", err)
	}

	if err := validateFilename(header.Filename); err != nil {
		file.Close()
		return nil, nil, err
	}
	return file, header, nil
}

// validateFilename checks the client filename against the upload allow-list
func validateFilename(filename string) error {
	name := utils.ClientBaseName(filename)
	if err := validation.Validate(name, validation.Required); err != nil {
		return utils.NewValidationError("uploaded file has no name", err)
	}

	extension := utils.ExtensionOf(name)
	if err := validation.Validate(extension, validation.Required, validation.In(allowedExtensions...)); err != nil {
		shown := "." + extension
		if extension == "" {
			shown = "(none)"
		}
		return utils.NewUnsupportedError(fmt.Sprintf("unsupported file type %s; allowed types: %s",
			shown, strings.Join(constants.AllowedExtensions, ", ")), nil)
	}
	return nil
}
