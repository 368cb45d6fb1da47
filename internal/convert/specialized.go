package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	ics "github.com/arran4/golang-ical"
	"github.com/emersion/go-vcard"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// extractJSON validates and pretty-prints a JSON document.
func (c *Converter) extractJSON(data []byte, filename string) string {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return extractionError(filename, err)
	}
	pretty, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return extractionError(filename, err)
	}
	return fmt.Sprintf("# JSON-Datei: %s\n\n```json\n%s\n```", filename, pretty)
}

// extractYAML validates a YAML document and fences the source.
func (c *Converter) extractYAML(data []byte, filename string) string {
	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return extractionError(filename, err)
	}
	return fmt.Sprintf("# YAML-Datei: %s\n\n```yaml\n%s\n```", filename, strings.TrimSpace(decodeText(data)))
}

// extractINI renders an INI file section by section.
func (c *Converter) extractINI(data []byte, filename string) string {
	cfg, err := ini.Load(data)
	if err != nil {
		return extractionError(filename, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Konfiguration: %s\n", filename)
	for _, section := range cfg.Sections() {
		keys := section.Keys()
		if len(keys) == 0 {
			continue
		}
		name := section.Name()
		if name == ini.DefaultSection {
			name = "Allgemein"
		}
		fmt.Fprintf(&sb, "\n## [%s]\n\n", name)
		for _, key := range keys {
			fmt.Fprintf(&sb, "- **%s** = %s\n", key.Name(), key.Value())
		}
	}

	out := strings.TrimRight(sb.String(), "\n")
	if !strings.Contains(out, "## [") {
		return noContent(filename)
	}
	return out
}

// extractCalendar lists the events of an iCalendar file.
func (c *Converter) extractCalendar(data []byte, filename string) string {
	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return extractionError(filename, err)
	}

	events := cal.Events()
	if len(events) == 0 {
		return noContent(filename)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Kalender: %s\n", filename)
	for _, ev := range events {
		summary := "(ohne Titel)"
		if p := ev.GetProperty(ics.ComponentPropertySummary); p != nil && p.Value != "" {
			summary = p.Value
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", summary)
		if start, err := ev.GetStartAt(); err == nil {
			fmt.Fprintf(&sb, "**Start:** %s\n", start.Format("02.01.2006 15:04"))
		}
		if end, err := ev.GetEndAt(); err == nil {
			fmt.Fprintf(&sb, "**Ende:** %s\n", end.Format("02.01.2006 15:04"))
		}
		if p := ev.GetProperty(ics.ComponentPropertyLocation); p != nil && p.Value != "" {
			fmt.Fprintf(&sb, "**Ort:** %s\n", p.Value)
		}
		if p := ev.GetProperty(ics.ComponentPropertyDescription); p != nil && p.Value != "" {
			fmt.Fprintf(&sb, "**Beschreibung:** %s\n", p.Value)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// extractContacts lists the entries of a vCard file.
func (c *Converter) extractContacts(data []byte, filename string) string {
	dec := vcard.NewDecoder(bytes.NewReader(data))

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Kontakte: %s\n", filename)

	count := 0
	for {
		card, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			if count == 0 {
				return extractionError(filename, err)
			}
			break
		}
		count++

		name := card.PreferredValue(vcard.FieldFormattedName)
		if name == "" {
			name = fmt.Sprintf("Kontakt %d", count)
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", name)
		if v := card.Value(vcard.FieldOrganization); v != "" {
			fmt.Fprintf(&sb, "**Organisation:** %s\n", v)
		}
		if v := card.PreferredValue(vcard.FieldEmail); v != "" {
			fmt.Fprintf(&sb, "**E-Mail:** %s\n", v)
		}
		if v := card.PreferredValue(vcard.FieldTelephone); v != "" {
			fmt.Fprintf(&sb, "**Telefon:** %s\n", v)
		}
	}

	if count == 0 {
		return noContent(filename)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// extractLog shows short logs completely and long logs as head plus tail.
func (c *Converter) extractLog(data []byte, filename string) string {
	text := strings.TrimRight(decodeText(data), "\n")
	if strings.TrimSpace(text) == "" {
		return noContent(filename)
	}
	lines := strings.Split(text, "\n")

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Log-Datei: %s\n\n", filename)
	fmt.Fprintf(&sb, "**Zeilen gesamt:** %d\n\n", len(lines))

	if len(lines) <= 40 {
		fmt.Fprintf(&sb, "```log\n%s\n```", text)
		return sb.String()
	}

	fmt.Fprintf(&sb, "**Erste 20 Zeilen:**\n\n```log\n%s\n```\n\n", strings.Join(lines[:20], "\n"))
	fmt.Fprintf(&sb, "**Letzte 20 Zeilen:**\n\n```log\n%s\n```", strings.Join(lines[len(lines)-20:], "\n"))
	return sb.String()
}

// extractLaTeX strips preamble and common commands, keeping sections as
// Markdown headings and the body prose.
func (c *Converter) extractLaTeX(data []byte, filename string) string {
	text := decodeText(data)

	// Skip everything before \begin{document} when present.
	if idx := strings.Index(text, `\begin{document}`); idx >= 0 {
		text = text[idx+len(`\begin{document}`):]
	}
	if idx := strings.Index(text, `\end{document}`); idx >= 0 {
		text = text[:idx]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# LaTeX-Dokument: %s\n\n", filename)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		switch {
		case strings.HasPrefix(line, `\section`):
			fmt.Fprintf(&sb, "## %s\n\n", latexArgument(line))
		case strings.HasPrefix(line, `\subsection`):
			fmt.Fprintf(&sb, "### %s\n\n", latexArgument(line))
		case strings.HasPrefix(line, `\subsubsection`):
			fmt.Fprintf(&sb, "#### %s\n\n", latexArgument(line))
		case strings.HasPrefix(line, `\begin`), strings.HasPrefix(line, `\end`),
			strings.HasPrefix(line, `\usepackage`), strings.HasPrefix(line, `\documentclass`):
			// Structure commands carry no prose.
		case strings.HasPrefix(line, `\item`):
			fmt.Fprintf(&sb, "- %s\n", stripLaTeXCommands(strings.TrimPrefix(line, `\item`)))
		default:
			if stripped := stripLaTeXCommands(line); stripped != "" {
				sb.WriteString(stripped + "\n")
			}
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == strings.TrimSpace(fmt.Sprintf("# LaTeX-Dokument: %s", filename)) {
		return noContent(filename)
	}
	return out
}

// latexArgument returns the brace argument of a command line.
func latexArgument(line string) string {
	open := strings.Index(line, "{")
	end := strings.Index(line, "}")
	if open < 0 || end <= open {
		return strings.TrimSpace(line)
	}
	return line[open+1 : end]
}

// stripLaTeXCommands removes inline commands, keeping their brace arguments.
func stripLaTeXCommands(line string) string {
	var sb strings.Builder
	i := 0
	for i < len(line) {
		ch := line[i]
		switch ch {
		case '\\':
			i++
			for i < len(line) && isRTFLetter(line[i]) {
				i++
			}
		case '{', '}', '$', '~':
			i++
		default:
			sb.WriteByte(ch)
			i++
		}
	}
	return strings.TrimSpace(sb.String())
}

type notebookFile struct {
	Cells    []notebookCell `json:"cells"`
	Metadata struct {
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
}

type notebookCell struct {
	CellType string           `json:"cell_type"`
	Source   notebookSource   `json:"source"`
	Outputs  []notebookOutput `json:"outputs"`
}

type notebookOutput struct {
	OutputType string                    `json:"output_type"`
	Text       notebookSource            `json:"text"`
	Data       map[string]notebookSource `json:"data"`
}

// notebookSource accepts both the list-of-lines and plain-string encodings
// the notebook format allows.
type notebookSource string

func (s *notebookSource) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = notebookSource(single)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*s = notebookSource(strings.Join(lines, ""))
	return nil
}

// extractNotebook renders a Jupyter notebook cell by cell.
func (c *Converter) extractNotebook(data []byte, filename string) string {
	var nb notebookFile
	if err := json.Unmarshal(data, &nb); err != nil {
		return extractionError(filename, err)
	}
	if len(nb.Cells) == 0 {
		return noContent(filename)
	}

	lang := nb.Metadata.LanguageInfo.Name
	if lang == "" {
		lang = "python"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Jupyter Notebook: %s\n", filename)

	for i, cell := range nb.Cells {
		source := strings.TrimSpace(string(cell.Source))
		switch cell.CellType {
		case "markdown":
			fmt.Fprintf(&sb, "\n## Markdown-Zelle %d\n\n%s\n", i+1, source)
		case "code":
			fmt.Fprintf(&sb, "\n## Code-Zelle %d\n\n```%s\n%s\n```\n", i+1, lang, source)
			for _, out := range cell.Outputs {
				text := string(out.Text)
				if text == "" {
					text = string(out.Data["text/plain"])
				}
				if strings.TrimSpace(text) != "" {
					fmt.Fprintf(&sb, "\n### Ausgabe\n\n```\n%s\n```\n", strings.TrimSpace(text))
				}
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
