package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"github.com/nodewee/file-to-text/pkg/interfaces"
	"github.com/nodewee/file-to-text/pkg/utils"
)

var (
	mhtmlHTMLPart   = regexp.MustCompile(`(?is)content-type:\s*text/html[^\r\n]*\r?\n(?:[^\r\n]+\r?\n)*\r?\n(.*?)(?:\r?\n--|$)`)
	spaceRun        = regexp.MustCompile(`[ \t]+`)
	blankLineRun    = regexp.MustCompile(`\n\s*\n\s*\n+`)
	spaceAroundLine = regexp.MustCompile(` *\n *`)
)

// HTMLConverter converts HTML and MHTML documents to markdown.
// The body is sanitized, then rendered with html-to-markdown; the plain
// node walk is only used when the markdown renderer fails.
type HTMLConverter struct {
	name      string
	sanitizer *bluemonday.Policy
	converter *md.Converter
}

// NewHTMLConverter creates a new HTML converter
func NewHTMLConverter() *HTMLConverter {
	return &HTMLConverter{
		name:      "html",
		sanitizer: bluemonday.UGCPolicy(),
		converter: md.NewConverter("", true, nil),
	}
}

// Name returns the name of the converter
func (c *HTMLConverter) Name() string {
	return c.name
}

// Accepts checks if this converter supports the given file type
func (c *HTMLConverter) Accepts(info interfaces.StreamInfo) bool {
	return hasExtension(info, "mhtml", "mht") || utils.IsHTMLFile(info.Extension, info.MimeType)
}

// Convert extracts the title and converts the document body to markdown
func (c *HTMLConverter) Convert(ctx context.Context, r io.ReadSeeker, info interfaces.StreamInfo) (*interfaces.ConverterResult, error) {
	data, err := readAll(ctx, r)
	if err != nil {
		return nil, err
	}

	if hasExtension(info, "mhtml", "mht") {
		data = extractHTMLFromMHTML(data)
	}

	decoded, err := charset.NewReader(bytes.NewReader(data), info.MimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect HTML encoding: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, template").Remove()

	root := doc.Find("body").First()
	if root.Length() == 0 {
		root = doc.Selection
	}
	body, err := root.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML body: %w", err)
	}

	markdown, err := c.converter.ConvertString(c.sanitizer.Sanitize(body))
	if err != nil {
		text := ""
		for _, node := range root.Nodes {
			var sb strings.Builder
			extractTextFromNode(node, &sb)
			text += sb.String()
		}
		markdown = cleanupText(text)
	}

	return &interfaces.ConverterResult{
		TextContent: strings.TrimSpace(markdown),
		Title:       title,
	}, nil
}

// extractTextFromNode recursively extracts text from HTML nodes
func extractTextFromNode(node *html.Node, textBuilder *strings.Builder) {
	if node.Type == html.ElementNode {
		if node.DataAtom == atom.Script || node.DataAtom == atom.Style {
			return
		}
		if isBlockElement(node.DataAtom) {
			textBuilder.WriteString("\n")
		}
	}

	if node.Type == html.TextNode {
		if text := strings.TrimSpace(node.Data); text != "" {
			textBuilder.WriteString(text)
			textBuilder.WriteString(" ")
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		extractTextFromNode(child, textBuilder)
	}

	if node.Type == html.ElementNode && isBlockElement(node.DataAtom) {
		textBuilder.WriteString("\n")
	}
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Article: true, atom.Section: true, atom.Header: true, atom.Footer: true,
	atom.Nav: true, atom.Aside: true, atom.Main: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.Table: true, atom.Tr: true, atom.Td: true, atom.Th: true,
	atom.Form: true, atom.Fieldset: true, atom.Address: true,
}

// isBlockElement checks if an HTML element is a block-level element
func isBlockElement(a atom.Atom) bool {
	return blockElements[a]
}

// cleanupText normalizes whitespace while keeping paragraph breaks
func cleanupText(text string) string {
	text = spaceRun.ReplaceAllString(text, " ")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	text = spaceAroundLine.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// extractHTMLFromMHTML returns the text/html part of an MHTML archive, or the input unchanged
func extractHTMLFromMHTML(content []byte) []byte {
	if matches := mhtmlHTMLPart.FindSubmatch(content); len(matches) > 1 {
		return matches[1]
	}
	return content
}
