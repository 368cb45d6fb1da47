package convert

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// zipFileContent returns the named member of an in-memory zip archive.
func zipFileContent(data []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("archive member %q not found", name)
}

// extractDOCX parses word/document.xml of a Word file. Paragraphs styled as
// Heading1..6 become Markdown headings, tables become pipe tables.
func (c *Converter) extractDOCX(data []byte, filename string) string {
	doc, err := zipFileContent(data, "word/document.xml")
	if err != nil {
		return extractionError(filename, err)
	}

	decoder := xml.NewDecoder(bytes.NewReader(doc))

	var sb strings.Builder
	var para strings.Builder
	var headingLevel int
	var inTable bool
	var tableIdx int
	var tableRow []string
	var tableRows [][]string

	flushPara := func() {
		text := strings.TrimSpace(para.String())
		para.Reset()
		if text == "" {
			headingLevel = 0
			return
		}
		if inTable {
			tableRow = append(tableRow, text)
			headingLevel = 0
			return
		}
		if headingLevel > 0 {
			fmt.Fprintf(&sb, "%s %s\n\n", strings.Repeat("#", headingLevel), text)
		} else {
			sb.WriteString(text + "\n\n")
		}
		headingLevel = 0
	}

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
			case "tbl":
				inTable = true
				tableIdx++
				tableRows = nil
			case "tr":
				tableRow = nil
			case "pStyle":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						headingLevel = docxHeadingLevel(attr.Value)
					}
				}
			case "t":
				var text string
				if err := decoder.DecodeElement(&text, &t); err == nil {
					para.WriteString(text)
				}
			case "tab":
				para.WriteByte('\t')
			case "br":
				para.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				flushPara()
			case "tc":
				// Cell text accumulated through flushPara into tableRow.
			case "tr":
				if len(tableRow) > 0 {
					tableRows = append(tableRows, tableRow)
				}
			case "tbl":
				inTable = false
				if len(tableRows) > 0 {
					fmt.Fprintf(&sb, "### Tabelle %d\n\n", tableIdx)
					writePipeTable(&sb, tableRows[0], tableRows[1:])
					sb.WriteString("\n")
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

// docxHeadingLevel maps a Word paragraph style name to a heading level,
// 0 for body text.
func docxHeadingLevel(style string) int {
	s := strings.ToLower(style)
	if !strings.HasPrefix(s, "heading") && !strings.HasPrefix(s, "berschrift") && !strings.HasPrefix(s, "überschrift") {
		return 0
	}
	for level := 1; level <= 6; level++ {
		if strings.HasSuffix(s, fmt.Sprintf("%d", level)) {
			return level
		}
	}
	return 1
}

// extractPPTX walks the slide XML parts of a PowerPoint file in slide order
// and renders each as a section separated by horizontal rules.
func (c *Converter) extractPPTX(data []byte, filename string) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return extractionError(filename, err)
	}

	var slides []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f.Name)
		}
	}
	sort.Slice(slides, func(i, j int) bool {
		return slideNumber(slides[i]) < slideNumber(slides[j])
	})

	var sb strings.Builder
	for i, name := range slides {
		content, err := zipFileContent(data, name)
		if err != nil {
			continue
		}
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&sb, "## Folie %d\n\n", i+1)

		text := pptxSlideText(content)
		if text == "" {
			sb.WriteString("*[Keine Textinhalte gefunden]*\n")
			continue
		}
		sb.WriteString(text + "\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return noContent(filename)
	}
	return text
}

// slideNumber extracts the numeric part of "ppt/slides/slideN.xml".
func slideNumber(name string) int {
	base := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
	n := 0
	for _, r := range base {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// pptxSlideText collects the a:t runs of one slide, one paragraph per line.
func pptxSlideText(content []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var sb strings.Builder
	var para strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				var text string
				if err := decoder.DecodeElement(&text, &t); err == nil {
					para.WriteString(text)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				if line := strings.TrimSpace(para.String()); line != "" {
					sb.WriteString("- " + line + "\n")
				}
				para.Reset()
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
