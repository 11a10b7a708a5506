package core

import (
	"unicode/utf8"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/types"
)

// RenderPreview returns the first PreviewCharLimit characters of the result.
// Characters are runes, so multi-byte text is never cut mid-character.
func RenderPreview(result types.ConversionResult) types.PreviewText {
	return truncateRunes(result.Text, constants.PreviewCharLimit)
}

func truncateRunes(text string, limit int) types.PreviewText {
	total := utf8.RuneCountInString(text)
	if total <= limit {
		return types.PreviewText{Text: text, TotalChars: total}
	}

	count := 0
	for i := range text {
		if count == limit {
			return types.PreviewText{Text: text[:i], Truncated: true, TotalChars: total}
		}
		count++
	}
	return types.PreviewText{Text: text, TotalChars: total}
}
