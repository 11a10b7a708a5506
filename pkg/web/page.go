package web

import (
	"bytes"
	"embed"
	"encoding/base64"
	"html/template"
	"net/http"
	"strings"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/types"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageData is everything the single page renders
type pageData struct {
	Title          string
	Accept         string
	PreviewHeight  int
	PreviewHeading string
	NoTextNotice   string
	DownloadLabel  string
	DownloadHelp   string

	Error        string
	Converted    bool
	NoText       bool
	Preview      string
	DownloadURL  template.URL
	DownloadName string
}

func newPageData() pageData {
	accept := make([]string, 0, len(constants.AllowedExtensions))
	for _, ext := range constants.AllowedExtensions {
		accept = append(accept, "."+ext)
	}
	return pageData{
		Title:          constants.AppTitle,
		Accept:         strings.Join(accept, ","),
		PreviewHeight:  constants.PreviewHeightPixels,
		PreviewHeading: constants.PreviewHeading,
		NoTextNotice:   constants.NoTextNotice,
		DownloadLabel:  constants.DownloadLabel,
		DownloadHelp:   constants.DownloadHelp,
	}
}

// withEffect fills the outcome of one upload into the page
func (p pageData) withEffect(effect *types.UIEffect) pageData {
	if effect.Failed() {
		p.Error = effect.Error
		return p
	}
	p.Converted = true
	p.NoText = effect.NoText
	if effect.Preview != nil {
		p.Preview = effect.Preview.Text
	}
	if effect.Download != nil {
		p.DownloadURL = dataURL(effect.Download)
		p.DownloadName = effect.Download.Filename
	}
	return p
}

// dataURL embeds the artifact in the link itself so nothing is kept server-side
func dataURL(artifact *types.DownloadArtifact) template.URL {
	return template.URL("data:" + artifact.ContentType + ";charset=utf-8;base64," +
		base64.StdEncoding.EncodeToString(artifact.Data))
}

// renderPage executes the template into a buffer first so a template error
// never produces a half-written page
func renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
