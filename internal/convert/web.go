package convert

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// extractHTML walks the parsed DOM and renders title, headings, paragraphs,
// lists and tables as Markdown. Script and style subtrees are skipped.
func (c *Converter) extractHTML(data []byte, filename string) string {
	doc, err := html.Parse(strings.NewReader(decodeText(data)))
	if err != nil {
		return extractionError(filename, err)
	}

	var sb strings.Builder
	walkHTML(doc, &sb)

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return noContent(filename)
	}
	return text
}

func walkHTML(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "head", "noscript":
			if n.Data == "head" {
				// Keep the title, drop the rest of head.
				if title := findTitle(n); title != "" {
					fmt.Fprintf(sb, "# %s\n\n", title)
				}
			}
			return
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(n.Data[1] - '0')
			fmt.Fprintf(sb, "%s %s\n\n", strings.Repeat("#", level), nodeText(n))
			return
		case "p":
			if text := nodeText(n); text != "" {
				sb.WriteString(text + "\n\n")
			}
			return
		case "li":
			if text := nodeText(n); text != "" {
				sb.WriteString("- " + text + "\n")
			}
			return
		case "table":
			writeHTMLTable(n, sb)
			return
		case "br":
			sb.WriteByte('\n')
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walkHTML(child, sb)
	}
	if n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol" || n.Data == "div") {
		sb.WriteByte('\n')
	}
}

func findTitle(head *html.Node) string {
	for child := head.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "title" {
			return nodeText(child)
		}
	}
	return ""
}

// nodeText collects and normalizes the text content of a subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// writeHTMLTable renders a table element as a Markdown pipe table.
func writeHTMLTable(table *html.Node, sb *strings.Builder) {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for cell := n.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
					row = append(row, nodeText(cell))
				}
			}
			if len(row) > 0 {
				rows = append(rows, row)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(table)

	if len(rows) == 0 {
		return
	}
	writePipeTable(sb, rows[0], rows[1:])
	sb.WriteByte('\n')
}

// extractXML renders an XML document as an indented element outline with
// text content, which reads better as context than raw markup.
func (c *Converter) extractXML(data []byte, filename string) string {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var sb strings.Builder
	fmt.Fprintf(&sb, "# XML-Struktur: %s\n\n", filename)

	depth := 0
	wrote := false
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			fmt.Fprintf(&sb, "%s- **%s**", strings.Repeat("  ", depth), t.Name.Local)
			for _, attr := range t.Attr {
				fmt.Fprintf(&sb, " [%s=%s]", attr.Name.Local, attr.Value)
			}
			sb.WriteByte('\n')
			depth++
			wrote = true
		case xml.EndElement:
			if depth > 0 {
				depth--
			}
		case xml.CharData:
			if text := strings.TrimSpace(string(t)); text != "" {
				fmt.Fprintf(&sb, "%s%s\n", strings.Repeat("  ", depth), text)
			}
		}
	}

	if !wrote {
		return noContent(filename)
	}
	return strings.TrimRight(sb.String(), "\n")
}
