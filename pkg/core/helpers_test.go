package core

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/logger"
	"github.com/nodewee/file-to-text/pkg/utils"
)

// fakeConverter is a DocumentConverter with scripted behaviour
type fakeConverter struct {
	name    string
	accepts bool
	text    string
	err     error
	calls   int
}

func (f *fakeConverter) Name() string                       { return f.name }
func (f *fakeConverter) Accepts(interfaces.StreamInfo) bool { return f.accepts }
func (f *fakeConverter) Convert(_ context.Context, r io.ReadSeeker, _ interfaces.StreamInfo) (*interfaces.ConverterResult, error) {
	f.calls++
	// Drain the stream so a later converter only succeeds if the factory rewinds
	data, _ := io.ReadAll(r)
	if f.err != nil {
		return nil, f.err
	}
	if f.text == "" {
		return &interfaces.ConverterResult{TextContent: string(data)}, nil
	}
	return &interfaces.ConverterResult{TextContent: f.text}, nil
}

// fileConverterFunc adapts a function to interfaces.FileConverter
type fileConverterFunc func(ctx context.Context, path string) (*interfaces.ConverterResult, error)

func (f fileConverterFunc) Convert(ctx context.Context, path string) (*interfaces.ConverterResult, error) {
	return f(ctx, path)
}

func newTestTempManager(t *testing.T) (*utils.SimpleTempManager, string) {
	t.Helper()
	dir := t.TempDir()
	return utils.NewSimpleTempManager(dir, logger.Discard()), dir
}

// requireEmptyDir fails unless dir holds no entries
func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "transient files left behind")
}
