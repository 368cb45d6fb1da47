package convert

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// extractRTF strips RTF control words and groups, leaving the plain text.
func (c *Converter) extractRTF(data []byte, filename string) string {
	text := strings.TrimSpace(stripRTF(data))
	if text == "" {
		return noContent(filename)
	}
	return fmt.Sprintf("# RTF-Dokument: %s\n\n%s", filename, text)
}

// stripRTF is a minimal RTF tokenizer: it drops control words, resolves the
// common escapes and hex-encoded bytes, and skips non-text destination groups.
func stripRTF(data []byte) string {
	var sb strings.Builder
	skipDepth := 0
	depth := 0

	for i := 0; i < len(data); i++ {
		ch := data[i]
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if skipDepth > 0 && depth < skipDepth {
				skipDepth = 0
			}
		case '\\':
			if i+1 >= len(data) {
				break
			}
			next := data[i+1]
			switch {
			case next == '\\' || next == '{' || next == '}':
				if skipDepth == 0 {
					sb.WriteByte(next)
				}
				i++
			case next == '\'' && i+3 < len(data):
				if skipDepth == 0 {
					if b, err := strconv.ParseUint(string(data[i+2:i+4]), 16, 8); err == nil {
						sb.WriteByte(byte(b))
					}
				}
				i += 3
			case next == '*':
				// \* marks an ignorable destination group.
				skipDepth = depth
				i++
			default:
				start := i + 1
				j := start
				for j < len(data) && isRTFLetter(data[j]) {
					j++
				}
				word := string(data[start:j])
				// Optional numeric parameter.
				for j < len(data) && (data[j] == '-' || (data[j] >= '0' && data[j] <= '9')) {
					j++
				}
				// One space after a control word belongs to it.
				if j < len(data) && data[j] == ' ' {
					j++
				}
				i = j - 1

				switch word {
				case "par", "line":
					if skipDepth == 0 {
						sb.WriteByte('\n')
					}
				case "tab":
					if skipDepth == 0 {
						sb.WriteByte('\t')
					}
				case "fonttbl", "colortbl", "stylesheet", "info", "pict":
					skipDepth = depth
				}
			}
		case '\r', '\n':
			// Raw newlines in RTF source are not content.
		default:
			if skipDepth == 0 {
				sb.WriteByte(ch)
			}
		}
	}
	return sb.String()
}

func isRTFLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// extractODT parses content.xml of an OpenDocument text file. text:h elements
// become headings according to their outline level, text:p become paragraphs.
func (c *Converter) extractODT(data []byte, filename string) string {
	content, err := zipFileContent(data, "content.xml")
	if err != nil {
		return extractionError(filename, err)
	}

	decoder := xml.NewDecoder(bytes.NewReader(content))

	var sb strings.Builder
	var para strings.Builder
	var headingLevel int
	inPara := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return extractionError(filename, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "h":
				inPara = true
				headingLevel = 1
				for _, attr := range t.Attr {
					if attr.Name.Local == "outline-level" {
						if lvl, err := strconv.Atoi(attr.Value); err == nil && lvl >= 1 && lvl <= 6 {
							headingLevel = lvl
						}
					}
				}
			case "p":
				inPara = true
				headingLevel = 0
			case "tab":
				if inPara {
					para.WriteByte('\t')
				}
			case "s":
				if inPara {
					para.WriteByte(' ')
				}
			}
		case xml.CharData:
			if inPara {
				para.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "h" || t.Name.Local == "p" {
				text := strings.TrimSpace(para.String())
				para.Reset()
				inPara = false
				if text == "" {
					continue
				}
				if headingLevel > 0 {
					fmt.Fprintf(&sb, "%s %s\n\n", strings.Repeat("#", headingLevel), text)
				} else {
					sb.WriteString(text + "\n\n")
				}
			}
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return noContent(filename)
	}
	return text
}
