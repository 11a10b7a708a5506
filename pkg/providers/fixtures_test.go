package providers

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/utils"
)

type zipEntry struct {
	name    string
	content []byte
}

// buildZip writes entries in order into an in-memory archive
func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="%s" ContentType="%s"/>
</Types>`

// buildDocx creates a minimal Word document with one paragraph per string
func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	return buildZip(t,
		zipEntry{"[Content_Types].xml", []byte(sprintfXML(contentTypesXML, "/word/document.xml",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"))},
		zipEntry{"word/document.xml", body.Bytes()},
	)
}

// buildPptx creates a minimal presentation with a single slide
func buildPptx(t *testing.T, text string) []byte {
	t.Helper()
	slide := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
		`<p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`

	return buildZip(t,
		zipEntry{"[Content_Types].xml", []byte(sprintfXML(contentTypesXML, "/ppt/slides/slide1.xml",
			"application/vnd.openxmlformats-officedocument.presentationml.slide+xml"))},
		zipEntry{"ppt/slides/slide1.xml", []byte(slide)},
	)
}

func sprintfXML(format, partName, contentType string) string {
	out := bytes.Replace([]byte(format), []byte("%s"), []byte(partName), 1)
	out = bytes.Replace(out, []byte("%s"), []byte(contentType), 1)
	return string(out)
}

// buildPDF writes a single-page PDF that shows text in Helvetica
func buildPDF(t *testing.T, text string) []byte {
	t.Helper()
	content := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// streamInfo builds the StreamInfo a converter would see for name
func streamInfo(name string) interfaces.StreamInfo {
	ext := utils.ExtensionOf(name)
	return interfaces.StreamInfo{
		Filename:  name,
		Extension: ext,
		MimeType:  utils.MimeTypeByExtension(ext),
	}
}

// testDispatcher routes streams to the first accepting converter
type testDispatcher struct {
	converters []interfaces.DocumentConverter
}

func (d *testDispatcher) ConvertStream(ctx context.Context, r io.ReadSeeker, info interfaces.StreamInfo) (*interfaces.ConverterResult, error) {
	for _, c := range d.converters {
		if c.Accepts(info) {
			return c.Convert(ctx, r, info)
		}
	}
	return nil, errors.New("unsupported file type")
}

func convertBytes(t *testing.T, c interfaces.DocumentConverter, name string, data []byte) (*interfaces.ConverterResult, error) {
	t.Helper()
	return c.Convert(context.Background(), bytes.NewReader(data), streamInfo(name))
}
