package convert

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		filename  string
		mediaType string
		want      Kind
	}{
		{"notes.md", "", KindMarkdown},
		{"notes.txt", "", KindText},
		{"data.csv", "", KindCSV},
		{"report.xlsx", "", KindXLSX},
		{"paper.pdf", "", KindPDF},
		{"letter.docx", "", KindDOCX},
		{"deck.pptx", "", KindPPTX},
		{"scan.PNG", "", KindImage},
		{"page.html", "", KindHTML},
		{"feed.xml", "", KindXML},
		{"old.rtf", "", KindRTF},
		{"text.odt", "", KindODT},
		{"book.epub", "", KindEPUB},
		{"mail.eml", "", KindEmail},
		{"mail.msg", "", KindEmail},
		{"bundle.zip", "", KindArchive},
		{"bundle.tar", "", KindArchive},
		{"bundle.tar.gz", "", KindArchive},
		{"bundle.7z", "", KindArchive},
		{"data.json", "", KindJSON},
		{"stack.yaml", "", KindYAML},
		{"app.ini", "", KindINI},
		{"termine.ics", "", KindCalendar},
		{"kontakte.vcf", "", KindContacts},
		{"server.log", "", KindLog},
		{"thesis.tex", "", KindLaTeX},
		{"analysis.ipynb", "", KindNotebook},
		{"script.py", "", KindCode},
		{"main.go", "", KindCode},
		{"mystery.bin", "", KindUnknown},
		// Media type fallback for extension-less names.
		{"upload", "application/pdf", KindPDF},
		{"upload", "image/png", KindImage},
		{"upload", "text/html", KindHTML},
		{"upload", "text/plain", KindText},
		{"upload", "application/octet-stream", KindUnknown},
	}

	for _, tt := range tests {
		if got := Detect(tt.filename, tt.mediaType); got != tt.want {
			t.Errorf("Detect(%q, %q) = %q, want %q", tt.filename, tt.mediaType, got, tt.want)
		}
	}
}

// Convert must degrade, never fail, for arbitrary bytes under every
// supported extension.
func TestConvertTotality(t *testing.T) {
	garbage := []byte{0x00, 0xff, 0xfe, 0x12, 0x81, 0x99, 0x00, 0x01}
	extensions := []string{
		".md", ".txt", ".csv", ".xlsx", ".pdf", ".docx", ".pptx", ".png",
		".html", ".xml", ".rtf", ".odt", ".epub", ".eml", ".msg", ".zip",
		".tar", ".tar.gz", ".7z", ".json", ".yaml", ".ini", ".ics", ".vcf",
		".log", ".tex", ".ipynb", ".py", ".weird",
	}

	c := New(nil, nil)
	for _, ext := range extensions {
		res := c.Convert(garbage, "datei"+ext, "")
		if strings.TrimSpace(res.Markdown) == "" {
			t.Errorf("Convert(%q) returned empty markdown", ext)
		}
	}
}

func TestConvertMarkdownPassthrough(t *testing.T) {
	c := New(nil, nil)
	res := c.Convert([]byte("# Titel\n\nText."), "notes.md", "")
	if res.Markdown != "# Titel\n\nText." {
		t.Errorf("markdown not passed through: %q", res.Markdown)
	}
	if res.Kind != KindMarkdown {
		t.Errorf("kind = %q", res.Kind)
	}
	if res.WordCount != 3 {
		t.Errorf("word count = %d, want 3", res.WordCount)
	}
}

func TestConvertUnknownBinaryPlaceholder(t *testing.T) {
	c := New(nil, nil)
	data := []byte{0x00, 0x80, 0xff, 0x01}
	res := c.Convert(data, "blob.bin", "application/octet-stream")

	for _, want := range []string{"blob.bin", "application/octet-stream", "4 Bytes", "Binärdatei"} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("placeholder missing %q:\n%s", want, res.Markdown)
		}
	}
	if bytes.Contains([]byte(res.Markdown), []byte{0x00}) {
		t.Error("placeholder contains raw binary")
	}
}

func TestConvertCSVStatistics(t *testing.T) {
	c := New(nil, nil)
	csv := "name,score\nAnna,3\nBernd,4\nClara,5\n"
	res := c.Convert([]byte(csv), "noten.csv", "text/csv")

	for _, want := range []string{
		"# CSV-Datei: noten.csv",
		"**Zeilen:** 3, **Spalten:** 2",
		"| name | score |",
		"| Anna | 3 |",
		"## Statistiken:",
		"**score**: Ø4.00, Min=3, Max=5",
	} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("missing %q in:\n%s", want, res.Markdown)
		}
	}
	if strings.Contains(res.Markdown, "**name**:") {
		t.Error("non-numeric column got statistics")
	}
}

func TestConvertCodeFencing(t *testing.T) {
	c := New(nil, nil)
	res := c.Convert([]byte("print('hi')"), "tool.py", "")

	if !strings.Contains(res.Markdown, "# Code-Datei: tool.py") {
		t.Errorf("missing code header:\n%s", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "```python\nprint('hi')\n```") {
		t.Errorf("missing fenced code:\n%s", res.Markdown)
	}
}

func TestConvertJSONPretty(t *testing.T) {
	c := New(nil, nil)
	res := c.Convert([]byte(`{"b":1,"a":[true,null]}`), "data.json", "")

	if !strings.Contains(res.Markdown, "# JSON-Datei: data.json") {
		t.Errorf("missing header:\n%s", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "```json") {
		t.Errorf("missing fence:\n%s", res.Markdown)
	}

	bad := c.Convert([]byte(`{"broken`), "data.json", "")
	if !strings.Contains(bad.Markdown, "Fehler beim Extrahieren der Inhalte von data.json") {
		t.Errorf("invalid json should degrade to error message:\n%s", bad.Markdown)
	}
}

func TestConvertLogHeadTail(t *testing.T) {
	c := New(nil, nil)

	var sb strings.Builder
	for i := 1; i <= 100; i++ {
		sb.WriteString(strings.Repeat("x", 3) + "\n")
	}
	res := c.Convert([]byte(sb.String()), "server.log", "")

	if !strings.Contains(res.Markdown, "**Erste 20 Zeilen:**") ||
		!strings.Contains(res.Markdown, "**Letzte 20 Zeilen:**") {
		t.Errorf("long log should be head/tail truncated:\n%s", res.Markdown)
	}

	short := c.Convert([]byte("eins\nzwei\n"), "kurz.log", "")
	if strings.Contains(short.Markdown, "Erste 20 Zeilen") {
		t.Errorf("short log should be shown completely:\n%s", short.Markdown)
	}
	if !strings.Contains(short.Markdown, "eins\nzwei") {
		t.Errorf("short log content missing:\n%s", short.Markdown)
	}
}

func TestConvertPDFFallbackMessage(t *testing.T) {
	c := New(nil, nil)
	res := c.Convert([]byte("definitely not a pdf"), "kaputt.pdf", "application/pdf")

	if !strings.Contains(res.Markdown, "Fehler beim Extrahieren des PDF-Inhalts von kaputt.pdf") {
		t.Errorf("unparseable pdf should yield descriptive message:\n%s", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "passwortgeschützt oder beschädigt") {
		t.Errorf("missing explanation:\n%s", res.Markdown)
	}
}

func TestConvertImageWithoutOCR(t *testing.T) {
	c := New(nil, nil)
	res := c.Convert([]byte{0x89, 0x50, 0x4e, 0x47}, "scan.png", "image/png")

	if !strings.Contains(res.Markdown, "Fehler beim OCR-Prozess für scan.png") {
		t.Errorf("missing OCR error message:\n%s", res.Markdown)
	}
}

func TestConvertZIPListing(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"a.txt", "dir/b.txt"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte("inhalt"))
	}
	zw.Close()

	c := New(nil, nil)
	res := c.Convert(buf.Bytes(), "bundle.zip", "application/zip")

	for _, want := range []string{
		"# Archiv: bundle.zip",
		"## Enthaltene Dateien:",
		"a.txt (6 Bytes)",
		"dir/b.txt",
		"**Gesamt:** 2 Einträge",
	} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("missing %q in:\n%s", want, res.Markdown)
		}
	}
	if strings.Contains(res.Markdown, "inhalt") {
		t.Error("archive content must not be unpacked")
	}
}

func TestConvertDOCX(t *testing.T) {
	document := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Überschrift</w:t></w:r></w:p>
    <w:p><w:r><w:t>Erster Absatz.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr><w:tc><w:p><w:r><w:t>Spalte A</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Spalte B</w:t></w:r></w:p></w:tc></w:tr>
      <w:tr><w:tc><w:p><w:r><w:t>1</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>2</w:t></w:r></w:p></w:tc></w:tr>
    </w:tbl>
  </w:body>
</w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/document.xml")
	w.Write([]byte(document))
	zw.Close()

	c := New(nil, nil)
	res := c.Convert(buf.Bytes(), "brief.docx", "")

	for _, want := range []string{
		"# Überschrift",
		"Erster Absatz.",
		"### Tabelle 1",
		"| Spalte A | Spalte B |",
		"| 1 | 2 |",
	} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("missing %q in:\n%s", want, res.Markdown)
		}
	}
}

func TestConvertPPTX(t *testing.T) {
	slide := func(text string) string {
		return `<?xml version="1.0"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
       xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld><p:spTree><p:sp><p:txBody>
    <a:p><a:r><a:t>` + text + `</a:t></a:r></a:p>
  </p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w1, _ := zw.Create("ppt/slides/slide1.xml")
	w1.Write([]byte(slide("Agenda")))
	w2, _ := zw.Create("ppt/slides/slide2.xml")
	w2.Write([]byte(slide("Ergebnisse")))
	zw.Close()

	c := New(nil, nil)
	res := c.Convert(buf.Bytes(), "deck.pptx", "")

	for _, want := range []string{"## Folie 1", "Agenda", "---", "## Folie 2", "Ergebnisse"} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("missing %q in:\n%s", want, res.Markdown)
		}
	}
}

func TestConvertHTML(t *testing.T) {
	page := `<html><head><title>Startseite</title><style>body{}</style></head>
<body><h1>Willkommen</h1><p>Ein Absatz.</p>
<table><tr><th>K</th></tr><tr><td>V</td></tr></table>
<script>alert(1)</script></body></html>`

	c := New(nil, nil)
	res := c.Convert([]byte(page), "seite.html", "text/html")

	for _, want := range []string{"# Startseite", "# Willkommen", "Ein Absatz.", "| K |", "| V |"} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("missing %q in:\n%s", want, res.Markdown)
		}
	}
	if strings.Contains(res.Markdown, "alert(1)") || strings.Contains(res.Markdown, "body{}") {
		t.Errorf("script/style leaked into output:\n%s", res.Markdown)
	}
}

func TestConvertEML(t *testing.T) {
	raw := "From: Anna <anna@example.com>\r\n" +
		"To: Bernd <bernd@example.com>\r\n" +
		"Subject: Termin\r\n" +
		"Date: Mon, 02 Jan 2006 15:04:05 +0100\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Hallo Bernd,\r\npasst Dienstag?\r\n"

	c := New(nil, nil)
	res := c.Convert([]byte(raw), "mail.eml", "message/rfc822")

	for _, want := range []string{
		"**Von:** Anna <anna@example.com>",
		"**An:** Bernd <bernd@example.com>",
		"**Betreff:** Termin",
		"passt Dienstag?",
	} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("missing %q in:\n%s", want, res.Markdown)
		}
	}
}

func TestConvertNotebook(t *testing.T) {
	nb := `{
  "cells": [
    {"cell_type": "markdown", "source": ["# Analyse\n", "Einleitung."]},
    {"cell_type": "code", "source": "print(1+1)",
     "outputs": [{"output_type": "stream", "text": ["2\n"]}]}
  ],
  "metadata": {"language_info": {"name": "python"}}
}`

	c := New(nil, nil)
	res := c.Convert([]byte(nb), "analyse.ipynb", "")

	for _, want := range []string{
		"# Jupyter Notebook: analyse.ipynb",
		"## Markdown-Zelle 1",
		"# Analyse",
		"## Code-Zelle 2",
		"```python\nprint(1+1)\n```",
		"### Ausgabe",
	} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("missing %q in:\n%s", want, res.Markdown)
		}
	}
}

func TestConvertINI(t *testing.T) {
	c := New(nil, nil)
	res := c.Convert([]byte("[server]\nhost = localhost\nport = 8080\n"), "app.ini", "")

	for _, want := range []string{"# Konfiguration: app.ini", "## [server]", "**host** = localhost", "**port** = 8080"} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("missing %q in:\n%s", want, res.Markdown)
		}
	}
}

func TestConvertRTF(t *testing.T) {
	raw := `{\rtf1\ansi{\fonttbl{\f0 Arial;}}\f0 Hallo Welt\par Zweite Zeile}`
	c := New(nil, nil)
	res := c.Convert([]byte(raw), "alt.rtf", "")

	if !strings.Contains(res.Markdown, "# RTF-Dokument: alt.rtf") {
		t.Errorf("missing header:\n%s", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "Hallo Welt") || !strings.Contains(res.Markdown, "Zweite Zeile") {
		t.Errorf("text not extracted:\n%s", res.Markdown)
	}
	if strings.Contains(res.Markdown, "Arial") {
		t.Errorf("font table leaked:\n%s", res.Markdown)
	}
}

func TestEstimateEmptyInputs(t *testing.T) {
	c := New(nil, nil)
	res := c.Convert(nil, "leer.txt", "")
	if strings.TrimSpace(res.Markdown) == "" {
		t.Error("empty input must still produce markdown")
	}
}
