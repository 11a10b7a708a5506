package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/logger"
	"github.com/nodewee/file-to-text/pkg/utils"
)

func TestConverterFactoryFallback(t *testing.T) {
	first := &fakeConverter{name: "first", accepts: true, err: errors.New("boom")}
	skipped := &fakeConverter{name: "skipped", accepts: false}
	second := &fakeConverter{name: "second", accepts: true}

	f := NewConverterFactory(logger.Discard())
	f.Register(first)
	f.Register(skipped)
	f.Register(second)

	res, err := f.ConvertStream(context.Background(), strings.NewReader("payload"), interfaces.StreamInfo{Extension: "txt"})
	require.NoError(t, err)
	assert.Equal(t, "payload", res.TextContent, "input must be rewound between attempts")
	assert.Equal(t, "second", res.ConverterUsed)
	assert.True(t, res.FallbackUsed)
	assert.Equal(t, []string{"first", "second"}, res.AttemptedConverters)
	assert.Zero(t, skipped.calls)
	assert.Equal(t, []string{"first", "skipped", "second"}, f.ListConverters())
}

func TestConverterFactoryFirstSuccessWins(t *testing.T) {
	first := &fakeConverter{name: "first", accepts: true, text: "from first"}
	second := &fakeConverter{name: "second", accepts: true, text: "from second"}

	f := NewConverterFactory(logger.Discard())
	f.Register(first)
	f.Register(second)

	res, err := f.ConvertStream(context.Background(), strings.NewReader("x"), interfaces.StreamInfo{})
	require.NoError(t, err)
	assert.Equal(t, "from first", res.TextContent)
	assert.False(t, res.FallbackUsed)
	assert.Zero(t, second.calls)
}

func TestConverterFactoryUnsupported(t *testing.T) {
	f := NewConverterFactory(logger.Discard())
	f.Register(&fakeConverter{name: "never", accepts: false})

	_, err := f.ConvertStream(context.Background(), strings.NewReader("x"), interfaces.StreamInfo{Extension: "qqq"})
	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeUnsupported, utils.GetErrorType(err))
	assert.Equal(t, "unsupported file type: .qqq", utils.UserMessage(err))
}

func TestConverterFactoryAllFail(t *testing.T) {
	f := NewConverterFactory(logger.Discard())
	f.Register(&fakeConverter{name: "a", accepts: true, err: errors.New("first failure")})
	f.Register(&fakeConverter{name: "b", accepts: true, err: errors.New("last failure")})

	_, err := f.ConvertStream(context.Background(), strings.NewReader("x"), interfaces.StreamInfo{Extension: "pdf"})
	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeConversion, utils.GetErrorType(err))
	assert.Contains(t, utils.UserMessage(err), "last failure")
	assert.NotContains(t, utils.UserMessage(err), "first failure")
}

func TestConverterFactorySingleFailure(t *testing.T) {
	f := NewConverterFactory(logger.Discard())
	f.Register(&fakeConverter{name: "pdf", accepts: true, err: errors.New("malformed PDF: bad xref")})

	_, err := f.ConvertStream(context.Background(), strings.NewReader("x"), interfaces.StreamInfo{Extension: "pdf"})
	require.Error(t, err)
	assert.Equal(t, "pdf conversion failed: malformed PDF: bad xref", utils.UserMessage(err))
}

func TestConverterFactoryCancelled(t *testing.T) {
	f := NewConverterFactory(logger.Discard())
	conv := &fakeConverter{name: "a", accepts: true}
	f.Register(conv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.ConvertStream(ctx, strings.NewReader("x"), interfaces.StreamInfo{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, conv.calls)
}
