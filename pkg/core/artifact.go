package core

import (
	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/types"
	"github.com/nodewee/file-to-text/pkg/utils"
)

// BuildDownloadArtifact packages the full, untruncated text for download.
// report.docx becomes report.txt; only the last extension is replaced.
func BuildDownloadArtifact(originalFilename string, result types.ConversionResult) types.DownloadArtifact {
	return types.DownloadArtifact{
		Filename:    utils.TextFileName(originalFilename),
		ContentType: constants.PlainTextContentType,
		Label:       constants.DownloadLabel,
		Data:        []byte(result.Text),
	}
}
