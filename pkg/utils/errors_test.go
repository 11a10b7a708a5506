package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessages(t *testing.T) {
	root := errors.New("bad xref")
	err := NewConversionError("pdf conversion failed", root)

	assert.Equal(t, "conversion: pdf conversion failed (caused by: bad xref)", err.Error())
	assert.Equal(t, "pdf conversion failed: bad xref", err.UserMessage())
	assert.ErrorIs(t, err, root)
	assert.ErrorIs(t, err, &AppError{Type: ErrorTypeConversion})
	assert.NotErrorIs(t, err, &AppError{Type: ErrorTypeIO})
}

func TestUserMessageChainsAppErrors(t *testing.T) {
	inner := NewIOError("failed to write temporary file", errors.New("disk full"))
	outer := WrapError(inner, "", "upload failed")

	assert.Equal(t, ErrorTypeIO, outer.Type)
	assert.Equal(t, "upload failed: failed to write temporary file: disk full", UserMessage(outer))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
	assert.Empty(t, UserMessage(nil))
}

func TestWrapErrorNil(t *testing.T) {
	assert.Nil(t, WrapError(nil, ErrorTypeIO, "ignored"))
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{context.DeadlineExceeded, ErrorTypeTimeout},
		{fmt.Errorf("wrapped: %w", context.Canceled), ErrorTypeTimeout},
		{errors.New("open x: permission denied"), ErrorTypePermission},
		{errors.New("open x: no such file or directory"), ErrorTypeNotFound},
		{errors.New("unsupported codec"), ErrorTypeUnsupported},
		{errors.New("malformed PDF: bad header"), ErrorTypeConversion},
		{errors.New("invalid value"), ErrorTypeValidation},
		{errors.New("something else"), ErrorTypeSystem},
		{NewTooLargeError("too big", nil), ErrorTypeTooLarge},
		{fmt.Errorf("ctx: %w", NewUnsupportedError("nope", nil)), ErrorTypeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}

func TestWithContext(t *testing.T) {
	err := NewValidationError("bad input", nil).WithContext("field", "filename")
	assert.Equal(t, "filename", err.Context["field"])

	outer := WrapError(err, "", "upload rejected").WithContext("request_id", "req-1")
	assert.Equal(t, map[string]interface{}{"field": "filename", "request_id": "req-1"}, ErrorContext(outer))
	assert.NotContains(t, err.Context, "request_id")

	assert.Equal(t, map[string]interface{}{"field": "filename"}, ErrorContext(fmt.Errorf("wrapped: %w", err)))
	assert.Empty(t, ErrorContext(errors.New("plain")))
	assert.Empty(t, ErrorContext(nil))
}
