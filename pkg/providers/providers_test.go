package providers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/container"
	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/logger"
	"github.com/nodewee/file-to-text/pkg/utils"
)

func TestAccepts(t *testing.T) {
	dispatcher := &testDispatcher{}
	converters := map[string]interfaces.DocumentConverter{
		"text": NewTextConverter(),
		"html": NewHTMLConverter(),
		"docx": NewDocxConverter(),
		"pptx": NewPptxConverter(),
		"xlsx": NewXlsxConverter(),
		"pdf":  NewPDFConverter(),
		"rtf":  NewRTFConverter(false),
		"zip":  NewZipConverter(dispatcher, logger.Discard()),
	}

	tests := []struct {
		filename string
		want     string
	}{
		{"notes.txt", "text"},
		{"README.md", "text"},
		{"page.html", "html"},
		{"page.htm", "html"},
		{"report.docx", "docx"},
		{"deck.pptx", "pptx"},
		{"budget.xlsx", "xlsx"},
		{"paper.pdf", "pdf"},
		{"letter.rtf", "rtf"},
		{"bundle.zip", "zip"},
		{"REPORT.DOCX", "docx"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			info := streamInfo(tt.filename)
			var accepted []string
			for name, c := range converters {
				if c.Accepts(info) {
					accepted = append(accepted, name)
				}
			}
			assert.Equal(t, []string{tt.want}, accepted)
		})
	}
}

func TestNothingAcceptsUnknownBinary(t *testing.T) {
	info := streamInfo("blob.bin")
	for _, c := range []interfaces.DocumentConverter{
		NewTextConverter(), NewHTMLConverter(), NewDocxConverter(), NewPptxConverter(),
		NewXlsxConverter(), NewPDFConverter(), NewRTFConverter(false),
	} {
		assert.False(t, c.Accepts(info), c.Name())
	}
}

func TestTextConverter(t *testing.T) {
	c := NewTextConverter()

	t.Run("utf8 passes through", func(t *testing.T) {
		res, err := convertBytes(t, c, "a.txt", []byte("héllo\nwörld"))
		require.NoError(t, err)
		assert.Equal(t, "héllo\nwörld", res.TextContent)
	})

	t.Run("byte order mark is dropped", func(t *testing.T) {
		res, err := convertBytes(t, c, "a.md", append([]byte{0xEF, 0xBB, 0xBF}, []byte("# Title")...))
		require.NoError(t, err)
		assert.Equal(t, "# Title", res.TextContent)
	})

	t.Run("declared charset is decoded", func(t *testing.T) {
		info := interfaces.StreamInfo{Filename: "a.txt", Extension: "txt", MimeType: "text/plain; charset=iso-8859-1"}
		res, err := c.Convert(context.Background(), bytes.NewReader([]byte("caf\xe9")), info)
		require.NoError(t, err)
		assert.Equal(t, "café", res.TextContent)
	})

	t.Run("empty file is empty text", func(t *testing.T) {
		res, err := convertBytes(t, c, "empty.txt", nil)
		require.NoError(t, err)
		assert.Empty(t, res.TextContent)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Convert(ctx, bytes.NewReader([]byte("x")), streamInfo("a.txt"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHTMLConverter(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title> Quarterly Notes </title>
<style>body { color: red }</style><script>alert("x")</script></head>
<body><h1>Hello</h1><p>World <b>bold</b></p><ul><li>one</li><li>two</li></ul></body></html>`

	res, err := convertBytes(t, NewHTMLConverter(), "page.html", []byte(page))
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Notes", res.Title)
	assert.Contains(t, res.TextContent, "# Hello")
	assert.Contains(t, res.TextContent, "World **bold**")
	assert.Contains(t, res.TextContent, "one")
	assert.NotContains(t, res.TextContent, "alert")
	assert.NotContains(t, res.TextContent, "color: red")
}

func TestHTMLConverterIsDeterministic(t *testing.T) {
	page := []byte(`<html><body><h2>Same</h2><p>input <a href="https://example.com">link</a></p></body></html>`)
	c := NewHTMLConverter()

	first, err := convertBytes(t, c, "p.html", page)
	require.NoError(t, err)
	second, err := convertBytes(t, c, "p.html", page)
	require.NoError(t, err)
	assert.Equal(t, first.TextContent, second.TextContent)
}

func TestMHTMLExtraction(t *testing.T) {
	archive := "MIME-Version: 1.0\r\nContent-Type: multipart/related; boundary=\"b\"\r\n\r\n--b\r\n" +
		"Content-Type: text/html; charset=utf-8\r\nContent-Location: http://example.com/\r\n\r\n" +
		"<html><body><p>Saved page</p></body></html>\r\n--b--\r\n"

	res, err := convertBytes(t, NewHTMLConverter(), "saved.mhtml", []byte(archive))
	require.NoError(t, err)
	assert.Contains(t, res.TextContent, "Saved page")
	assert.NotContains(t, res.TextContent, "Content-Location")
}

func TestCleanupText(t *testing.T) {
	assert.Equal(t, "a b\n\nc", cleanupText("  a \t b \n\n\n\n c  "))
}

func TestDocxConverter(t *testing.T) {
	res, err := convertBytes(t, NewDocxConverter(), "report.docx", buildDocx(t, "Hello docx", "Second paragraph"))
	require.NoError(t, err)
	assert.Contains(t, res.TextContent, "Hello docx")
	assert.Contains(t, res.TextContent, "Second paragraph")
}

func TestDocxConverterRejectsGarbage(t *testing.T) {
	_, err := convertBytes(t, NewDocxConverter(), "report.docx", []byte("definitely not a zip"))
	assert.Error(t, err)
}

func TestPptxConverter(t *testing.T) {
	res, err := convertBytes(t, NewPptxConverter(), "deck.pptx", buildPptx(t, "Slide text"))
	require.NoError(t, err)
	assert.Contains(t, res.TextContent, "Slide text")
}

func TestXlsxConverter(t *testing.T) {
	book := excelize.NewFile()
	require.NoError(t, book.SetCellValue("Sheet1", "A1", "Name"))
	require.NoError(t, book.SetCellValue("Sheet1", "B1", "Qty"))
	require.NoError(t, book.SetCellValue("Sheet1", "A2", "apple|pie"))
	require.NoError(t, book.SetCellValue("Sheet1", "B2", 3))
	_, err := book.NewSheet("Extra")
	require.NoError(t, err)
	require.NoError(t, book.SetCellValue("Extra", "A1", "only"))
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, book.Close())

	res, err := convertBytes(t, NewXlsxConverter(), "budget.xlsx", buf.Bytes())
	require.NoError(t, err)
	want := "## Sheet1\n" +
		"| Name | Qty |\n" +
		"| --- | --- |\n" +
		`| apple\|pie | 3 |` + "\n" +
		"\n" +
		"## Extra\n" +
		"| only |\n" +
		"| --- |"
	assert.Equal(t, want, res.TextContent)
}

func TestWriteMarkdownTablePadsRaggedRows(t *testing.T) {
	var sb strings.Builder
	writeMarkdownTable(&sb, [][]string{{"a"}, {"b", "c"}})
	assert.Equal(t, "| a |  |\n| --- | --- |\n| b | c |\n", sb.String())
}

func TestPDFConverterRejectsMalformedInput(t *testing.T) {
	c := NewPDFConverter()

	_, err := convertBytes(t, c, "broken.pdf", []byte("this is not a pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed PDF")

	_, err = convertBytes(t, c, "empty.pdf", nil)
	assert.Error(t, err)
}

func TestPDFConverter(t *testing.T) {
	c := NewPDFConverter()
	doc := buildPDF(t, "Hello PDF")

	first, err := convertBytes(t, c, "hello.pdf", doc)
	require.NoError(t, err)
	assert.Equal(t, "Hello PDF", first.TextContent)

	second, err := convertBytes(t, c, "hello.pdf", doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

const sampleRTF = `{\rtf1\ansi{\fonttbl{\f0 Times;}}{\colortbl;\red0\green0\blue0;}` +
	`\f0 Hello \b RTF\b0\par caf\'e9 \u8364? end{\*\generator Writer;}}`

func TestRTFConverterBuiltin(t *testing.T) {
	c := NewRTFConverter(false)
	c.lookPath = func() (string, error) {
		t.Fatal("unrtf must not be looked up when external tools are off")
		return "", nil
	}

	first, err := convertBytes(t, c, "letter.rtf", []byte(sampleRTF))
	require.NoError(t, err)
	assert.Equal(t, "Hello RTF\ncaf\u00e9 \u20ac end", first.TextContent)

	second, err := convertBytes(t, c, "letter.rtf", []byte(sampleRTF))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRTFConverterFallsBackWithoutUnrtf(t *testing.T) {
	c := NewRTFConverter(true)
	c.lookPath = func() (string, error) { return "", errors.New("not found") }

	res, err := convertBytes(t, c, "letter.rtf", []byte(`{\rtf1 hello}`))
	require.NoError(t, err)
	assert.Equal(t, "hello", res.TextContent)
}

func TestRTFConverterWithUnrtf(t *testing.T) {
	if _, err := exec.LookPath("unrtf"); err != nil {
		t.Skip("unrtf not installed")
	}
	c := NewRTFConverter(true)

	first, err := convertBytes(t, c, "letter.rtf", []byte(sampleRTF))
	require.NoError(t, err)
	assert.Contains(t, first.TextContent, "Hello")
	assert.Contains(t, first.TextContent, "RTF")

	second, err := convertBytes(t, c, "letter.rtf", []byte(sampleRTF))
	require.NoError(t, err)
	assert.Equal(t, first.TextContent, second.TextContent)
}

func TestStripRTF(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"escaped braces", `{\rtf1 a\{b\}c\\d}`, `a{b}c\d`},
		{"tab and line", `{\rtf1 a\tab b\line c}`, "a\tb\nc"},
		{"unicode with two fallback chars", `{\rtf1\uc2 \u-3913 xyz}`, "\uf0b7z"},
		{"ignorable destination", `{\rtf1 keep{\*\bkmkstart x} this}`, "keep this"},
		{"symbols", `{\rtf1 \ldblquote hi\rdblquote\emdash ok}`, "\u201chi\u201d\u2014ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stripRTF([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := stripRTF([]byte(`{\rtf1 a}}`))
	assert.ErrorContains(t, err, "unbalanced")
	_, err = stripRTF([]byte(`{\rtf1 \'zz}`))
	assert.ErrorContains(t, err, "hex escape")
}

func TestRTFConverterRejectsNonRTF(t *testing.T) {
	c := NewRTFConverter(false)

	_, err := convertBytes(t, c, "letter.rtf", []byte("plain words"))
	assert.Error(t, err)
}

func newZipChain() (*testDispatcher, *ZipConverter) {
	d := &testDispatcher{}
	z := NewZipConverter(d, logger.Discard())
	d.converters = []interfaces.DocumentConverter{NewTextConverter(), z}
	return d, z
}

func TestZipConverter(t *testing.T) {
	_, z := newZipChain()
	archive := buildZip(t,
		zipEntry{"a.txt", []byte("alpha")},
		zipEntry{"skip.bin", []byte{0x00, 0x01}},
		zipEntry{"dir/", nil},
		zipEntry{"dir/c.md", []byte("gamma\n")},
	)

	res, err := convertBytes(t, z, "bundle.zip", archive)
	require.NoError(t, err)
	assert.Equal(t, "## File: a.txt\n\nalpha\n\n## File: dir/c.md\n\ngamma", res.TextContent)
}

func TestZipConverterRecursesIntoNestedArchives(t *testing.T) {
	_, z := newZipChain()
	inner := buildZip(t, zipEntry{"x.txt", []byte("deep")})
	outer := buildZip(t, zipEntry{"inner.zip", inner})

	res, err := convertBytes(t, z, "outer.zip", outer)
	require.NoError(t, err)
	assert.Equal(t, "## File: inner.zip\n\n## File: x.txt\n\ndeep", res.TextContent)
}

func TestZipConverterDepthLimit(t *testing.T) {
	_, z := newZipChain()
	archive := buildZip(t, zipEntry{"a.txt", []byte("alpha")})

	ctx := context.WithValue(context.Background(), zipDepthKey{}, constants.MaxZipDepth)
	_, err := z.Convert(ctx, bytes.NewReader(archive), streamInfo("a.zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nesting")
}

func TestZipConverterEntryLimit(t *testing.T) {
	_, z := newZipChain()
	z.maxEntries = 2

	res, err := convertBytes(t, z, "two.zip", buildZip(t,
		zipEntry{"a.txt", []byte("a")},
		zipEntry{"dir/", nil},
		zipEntry{"b.txt", []byte("b")},
	))
	require.NoError(t, err)
	assert.Equal(t, "## File: a.txt\n\na\n\n## File: b.txt\n\nb", res.TextContent)

	_, err = convertBytes(t, z, "three.zip", buildZip(t,
		zipEntry{"a.txt", []byte("a")},
		zipEntry{"b.txt", []byte("b")},
		zipEntry{"c.txt", []byte("c")},
	))
	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeTooLarge, utils.GetErrorType(err))
	assert.ErrorContains(t, err, "more than 2 files")
}

func TestZipConverterTotalSizeLimit(t *testing.T) {
	_, z := newZipChain()
	z.maxTotalSize = 20

	// Each entry counts its bytes read plus the text it produced
	_, err := convertBytes(t, z, "fits.zip", buildZip(t,
		zipEntry{"a.txt", []byte("alpha")},
		zipEntry{"b.txt", []byte("bravo")},
	))
	require.NoError(t, err)

	_, err = convertBytes(t, z, "big.zip", buildZip(t,
		zipEntry{"a.txt", []byte("alpha")},
		zipEntry{"b.txt", []byte("bravo")},
		zipEntry{"c.txt", []byte("charlie")},
	))
	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeTooLarge, utils.GetErrorType(err))
	assert.ErrorContains(t, err, "expands past 20 bytes")
}

func TestZipConverterLimitCoversNestedArchives(t *testing.T) {
	_, z := newZipChain()
	z.maxTotalSize = 15

	inner := buildZip(t, zipEntry{"x.txt", []byte("0123456789")})
	outer := buildZip(t, zipEntry{"inner.zip", inner})

	_, err := convertBytes(t, z, "outer.zip", outer)
	require.Error(t, err, "an oversized nested archive must fail the whole upload, not be skipped")
	assert.Equal(t, utils.ErrorTypeTooLarge, utils.GetErrorType(err))
}

func TestZipConverterRejectsCorruptArchive(t *testing.T) {
	_, z := newZipChain()
	_, err := convertBytes(t, z, "broken.zip", []byte("PK but not really"))
	assert.Error(t, err)
}

// fakeRuntime is a container.Runtime that echoes stdin with a prefix
type fakeRuntime struct {
	imageErr error
	runErr   error
	gotImage string
}

func (f *fakeRuntime) Name() string                   { return "docker" }
func (f *fakeRuntime) Available() bool                { return true }
func (f *fakeRuntime) ImageExists(image string) error { return f.imageErr }
func (f *fakeRuntime) Run(_ context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	f.gotImage = image
	if f.runErr != nil {
		return f.runErr
	}
	data, _ := io.ReadAll(stdin)
	_, _ = stdout.Write([]byte("converted: " + string(data) + "\n"))
	return nil
}

func TestMarkitdownConverter(t *testing.T) {
	rt := &fakeRuntime{}
	detections := 0
	c := newMarkitdownConverter("markitdown:latest", func() (container.Runtime, error) {
		detections++
		return rt, nil
	}, logger.Discard())

	for i := 0; i < 2; i++ {
		res, err := convertBytes(t, c, "deck.pptx", []byte("slides"))
		require.NoError(t, err)
		assert.Equal(t, "converted: slides", res.TextContent)
	}
	assert.Equal(t, "markitdown:latest", rt.gotImage)
	assert.Equal(t, 1, detections, "runtime detection must happen once")
}

func TestMarkitdownConverterErrors(t *testing.T) {
	t.Run("no runtime", func(t *testing.T) {
		c := newMarkitdownConverter("markitdown:latest", func() (container.Runtime, error) {
			return nil, errors.New("no container runtime available")
		}, logger.Discard())
		_, err := convertBytes(t, c, "a.pdf", []byte("%PDF"))
		assert.ErrorContains(t, err, "no container runtime")
	})

	t.Run("missing image", func(t *testing.T) {
		rt := &fakeRuntime{imageErr: errors.New("image markitdown:latest not found")}
		c := newMarkitdownConverter("markitdown:latest", func() (container.Runtime, error) { return rt, nil }, logger.Discard())
		_, err := convertBytes(t, c, "a.pdf", []byte("%PDF"))
		assert.ErrorContains(t, err, "markitdown image not available")
	})

	t.Run("container failure", func(t *testing.T) {
		rt := &fakeRuntime{runErr: errors.New("exit status 1")}
		c := newMarkitdownConverter("markitdown:latest", func() (container.Runtime, error) { return rt, nil }, logger.Discard())
		_, err := convertBytes(t, c, "a.pdf", []byte("%PDF"))
		assert.ErrorContains(t, err, "exit status 1")
	})
}

func TestCalibreConverterMissingBinary(t *testing.T) {
	tm := utils.NewSimpleTempManager(t.TempDir(), logger.Discard())
	c := NewCalibreConverter("/nonexistent/ebook-convert", tm, logger.Discard())
	c.resolveOnce.Do(func() {
		c.resolveErr = utils.NewNotFoundError("Calibre ebook-convert command not found", nil)
	})

	assert.True(t, c.Accepts(streamInfo("book.epub")))
	_, err := convertBytes(t, c, "book.epub", []byte("epub"))
	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeNotFound, utils.GetErrorType(err))
	assert.Zero(t, tm.Pending())
}

func TestCalibreConverterReleasesOutputFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script in place of ebook-convert")
	}
	script := filepath.Join(t.TempDir(), "ebook-convert")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ncat \"$1\" > \"$2\"\n"), 0o755))

	dir := t.TempDir()
	tm := utils.NewSimpleTempManager(dir, logger.Discard())
	c := NewCalibreConverter(script, tm, logger.Discard())
	c.resolveOnce.Do(func() { c.resolved = script })

	for i := 0; i < 2; i++ {
		res, err := convertBytes(t, c, "book.epub", []byte("chapter one"))
		require.NoError(t, err)
		assert.Equal(t, "chapter one", res.TextContent)
		assert.Zero(t, tm.Pending())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
