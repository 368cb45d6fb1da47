package convert

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/net/html"
)

type epubPackage struct {
	Metadata struct {
		Title   string `xml:"title"`
		Creator string `xml:"creator"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID        string `xml:"id,attr"`
			Href      string `xml:"href,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// extractEPUB reads an EPUB container: book metadata from the OPF package,
// then every spine chapter in reading order.
func (c *Converter) extractEPUB(data []byte, filename string) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return extractionError(filename, err)
	}

	opfName := findOPF(zr)
	if opfName == "" {
		return extractionError(filename, fmt.Errorf("kein OPF-Paket gefunden"))
	}
	opfData, err := zipFileContent(data, opfName)
	if err != nil {
		return extractionError(filename, err)
	}

	var pkg epubPackage
	if err := xml.Unmarshal(opfData, &pkg); err != nil {
		return extractionError(filename, err)
	}

	var sb strings.Builder
	title := strings.TrimSpace(pkg.Metadata.Title)
	if title == "" {
		title = filename
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if author := strings.TrimSpace(pkg.Metadata.Creator); author != "" {
		fmt.Fprintf(&sb, "**Autor:** %s\n\n", author)
	}

	hrefByID := make(map[string]string, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		if strings.Contains(item.MediaType, "html") {
			hrefByID[item.ID] = item.Href
		}
	}

	base := path.Dir(opfName)
	chapter := 0
	for _, ref := range pkg.Spine.ItemRefs {
		href, ok := hrefByID[ref.IDRef]
		if !ok {
			continue
		}
		member := href
		if base != "." {
			member = path.Join(base, href)
		}
		content, err := zipFileContent(data, member)
		if err != nil {
			continue
		}
		chTitle, text := epubChapter(content)
		if text == "" {
			continue
		}
		chapter++
		if chTitle == "" {
			chTitle = fmt.Sprintf("Abschnitt %d", chapter)
		}
		fmt.Fprintf(&sb, "## Kapitel: %s\n\n%s\n\n", chTitle, text)
	}

	if chapter == 0 {
		return noContent(filename)
	}
	return strings.TrimSpace(sb.String())
}

// findOPF locates the package document, via META-INF/container.xml when
// present, otherwise by extension scan.
func findOPF(zr *zip.Reader) string {
	for _, f := range zr.File {
		if f.Name != "META-INF/container.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			break
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			break
		}
		var container struct {
			Rootfiles struct {
				Rootfile []struct {
					FullPath string `xml:"full-path,attr"`
				} `xml:"rootfile"`
			} `xml:"rootfiles"`
		}
		if xml.Unmarshal(raw, &container) == nil && len(container.Rootfiles.Rootfile) > 0 {
			return container.Rootfiles.Rootfile[0].FullPath
		}
	}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".opf") {
			return f.Name
		}
	}
	return ""
}

// epubChapter extracts the first heading as chapter title plus the body text
// of one XHTML chapter file.
func epubChapter(content []byte) (title, text string) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return "", ""
	}

	var body strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head":
				return
			case "h1", "h2", "h3":
				if title == "" {
					title = nodeText(n)
					return
				}
			case "p", "div", "li":
				if t := nodeText(n); t != "" && n.Data == "p" {
					body.WriteString(t + "\n\n")
					return
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	text = strings.TrimSpace(body.String())
	if text == "" {
		// Chapters without p tags still carry text nodes.
		text = strings.TrimSpace(nodeText(doc))
		if title != "" && strings.HasPrefix(text, title) {
			text = strings.TrimSpace(strings.TrimPrefix(text, title))
		}
	}
	return title, text
}
