package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/nodewee/file-to-text/pkg/container"
	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/logger"
)

// markitdownExtensions are the formats sent to the container fallback
var markitdownExtensions = []string{
	"docx", "xlsx", "pptx", "pdf", "html", "htm", "epub", "rtf",
}

// MarkitdownConverter pipes documents through a markitdown container image.
// The runtime is detected on first use so registering it never runs commands.
type MarkitdownConverter struct {
	name   string
	image  string
	detect func() (container.Runtime, error)
	logger *logger.Logger

	once    sync.Once
	runtime container.Runtime
	initErr error
}

// NewMarkitdownConverter creates a container plugin running image
func NewMarkitdownConverter(image string, log *logger.Logger) *MarkitdownConverter {
	return newMarkitdownConverter(image, container.DetectRuntime, log)
}

func newMarkitdownConverter(image string, detect func() (container.Runtime, error), log *logger.Logger) *MarkitdownConverter {
	return &MarkitdownConverter{
		name:   "markitdown",
		image:  image,
		detect: detect,
		logger: log,
	}
}

// Name returns the name of the converter
func (c *MarkitdownConverter) Name() string {
	return c.name
}

// Accepts checks if this converter supports the given file type
func (c *MarkitdownConverter) Accepts(info interfaces.StreamInfo) bool {
	return hasExtension(info, markitdownExtensions...)
}

// Convert streams the document into the container and returns its stdout
func (c *MarkitdownConverter) Convert(ctx context.Context, r io.ReadSeeker, info interfaces.StreamInfo) (*interfaces.ConverterResult, error) {
	rt, err := c.init()
	if err != nil {
		return nil, err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind input: %w", err)
	}

	c.logger.Progress("🐳", "Converting %s with %s via %s", info.Filename, c.image, rt.Name())

	var out bytes.Buffer
	if err := rt.Run(ctx, c.image, r, &out); err != nil {
		return nil, fmt.Errorf("converting %s with markitdown: %w", info.Filename, err)
	}

	return &interfaces.ConverterResult{
		TextContent: strings.TrimSpace(out.String()),
	}, nil
}

func (c *MarkitdownConverter) init() (container.Runtime, error) {
	c.once.Do(func() {
		rt, err := c.detect()
		if err != nil {
			c.initErr = err
			return
		}
		if err := rt.ImageExists(c.image); err != nil {
			c.initErr = fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
			return
		}
		c.runtime = rt
	})
	return c.runtime, c.initErr
}
