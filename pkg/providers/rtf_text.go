package providers

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// rtfSkipDestinations are groups that never hold body text
var rtfSkipDestinations = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "info": true,
	"pict": true, "object": true, "header": true, "footer": true,
	"headerl": true, "headerr": true, "footerl": true, "footerr": true,
	"listtable": true, "listoverridetable": true, "rsidtbl": true,
	"generator": true, "xmlnstbl": true, "themedata": true, "datastore": true,
	"latentstyles": true, "filetbl": true, "revtbl": true,
}

var rtfSymbols = map[string]string{
	"par": "\n", "line": "\n", "sect": "\n\n", "page": "\n\n", "row": "\n",
	"tab": "\t", "cell": "\t",
	"emdash": "\u2014", "endash": "\u2013", "bullet": "\u2022",
	"lquote": "\u2018", "rquote": "\u2019", "ldblquote": "\u201c", "rdblquote": "\u201d",
	"emspace": " ", "enspace": " ", "qmspace": " ",
}

type rtfGroup struct {
	skip bool
	uc   int // fallback characters that follow each \u
}

// stripRTF returns the body text of an RTF document with control words removed.
// Hex escapes are read as Windows-1252.
func stripRTF(data []byte) (string, error) {
	var (
		sb       strings.Builder
		stack    []rtfGroup
		state    = rtfGroup{uc: 1}
		fallback int
	)

	emit := func(s string) {
		if fallback > 0 {
			fallback--
			return
		}
		if !state.skip {
			sb.WriteString(s)
		}
	}

	for i := 0; i < len(data); i++ {
		ch := data[i]
		switch ch {
		case '{':
			stack = append(stack, state)
		case '}':
			if len(stack) == 0 {
				return "", fmt.Errorf("unbalanced group at offset %d", i)
			}
			state = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			fallback = 0
		case '\r', '\n':
		case '\\':
			if i+1 >= len(data) {
				return sb.String(), nil
			}
			i++
			next := data[i]
			switch {
			case next == '\\' || next == '{' || next == '}':
				emit(string(next))
			case next == '\'':
				if i+2 >= len(data) {
					return "", fmt.Errorf("truncated hex escape at offset %d", i)
				}
				b, err := strconv.ParseUint(string(data[i+1:i+3]), 16, 8)
				if err != nil {
					return "", fmt.Errorf("bad hex escape at offset %d", i)
				}
				i += 2
				emit(string(charmap.Windows1252.DecodeByte(byte(b))))
			case next == '*':
				state.skip = true
			case next == '~':
				emit(" ")
			case next == '_':
				emit("-")
			case next == '\r' || next == '\n':
				emit("\n")
			case isASCIILetter(next):
				start := i
				for i < len(data) && isASCIILetter(data[i]) {
					i++
				}
				word := string(data[start:i])

				paramStart := i
				if i < len(data) && data[i] == '-' {
					i++
				}
				for i < len(data) && data[i] >= '0' && data[i] <= '9' {
					i++
				}
				param, hasParam := 0, i > paramStart
				if hasParam {
					param, _ = strconv.Atoi(string(data[paramStart:i]))
				}
				// A single space only delimits the control word
				if i >= len(data) || data[i] != ' ' {
					i--
				}

				switch {
				case rtfSkipDestinations[word]:
					state.skip = true
				case word == "uc" && hasParam:
					state.uc = param
				case word == "u" && hasParam:
					if param < 0 {
						param += 65536
					}
					fallback = 0
					emit(string(rune(param)))
					fallback = state.uc
				default:
					if s, ok := rtfSymbols[word]; ok {
						fallback = 0
						emit(s)
					}
				}
			}
		default:
			if ch >= 0x80 {
				emit(string(charmap.Windows1252.DecodeByte(ch)))
			} else {
				emit(string(ch))
			}
		}
	}

	return sb.String(), nil
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
