// Package convert normalizes uploaded files of arbitrary formats into a
// single Markdown text representation usable as model context.
//
// Supported families:
//   - Markdown/plain text (passthrough / fenced)
//   - Tabular: .csv, .xlsx (pipe tables + column statistics)
//   - Office: .pdf (three-tier fallback incl. OCR), .docx, .pptx
//   - Images (OCR via external service)
//   - Web: .html, .xml (heuristic encoding detection)
//   - Rich text: .rtf, .odt
//   - E-books: .epub
//   - E-mail: .eml, .msg
//   - Archives: .zip, .tar, .tar.gz, .7z (member listing only)
//   - Specialized: .json, .yaml, .ini, .ics, .vcf, .log, .tex, .ipynb, source code
//
// Every extractor is total: no input, however malformed, raises past the
// Convert boundary. Failure paths degrade to a human-readable Markdown
// message naming the file and the error.
package convert

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Kind identifies a normalizable document family.
type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindText     Kind = "text"
	KindCSV      Kind = "csv"
	KindXLSX     Kind = "xlsx"
	KindPDF      Kind = "pdf"
	KindDOCX     Kind = "docx"
	KindPPTX     Kind = "pptx"
	KindImage    Kind = "image"
	KindHTML     Kind = "html"
	KindXML      Kind = "xml"
	KindRTF      Kind = "rtf"
	KindODT      Kind = "odt"
	KindEPUB     Kind = "epub"
	KindEmail    Kind = "email"
	KindArchive  Kind = "archive"
	KindJSON     Kind = "json"
	KindYAML     Kind = "yaml"
	KindINI      Kind = "ini"
	KindCalendar Kind = "calendar"
	KindContacts Kind = "contacts"
	KindLog      Kind = "log"
	KindLaTeX    Kind = "latex"
	KindNotebook Kind = "notebook"
	KindCode     Kind = "code"
	KindUnknown  Kind = "unknown"
)

// codeLangs maps source file extensions to fence language tags.
var codeLangs = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".java": "java",
	".cpp":  "cpp",
	".c":    "c",
	".php":  "php",
	".rb":   "ruby",
	".go":   "go",
	".rs":   "rust",
}

// Detect maps a filename and declared media type to a Kind. The extension
// decides; the media type is only a fallback for extension-less names.
func Detect(filename, mediaType string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return KindMarkdown
	case ".txt", ".text":
		return KindText
	case ".csv":
		return KindCSV
	case ".xlsx":
		return KindXLSX
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	case ".pptx":
		return KindPPTX
	case ".png", ".jpg", ".jpeg", ".tiff", ".bmp", ".gif", ".webp":
		return KindImage
	case ".html", ".htm":
		return KindHTML
	case ".xml":
		return KindXML
	case ".rtf":
		return KindRTF
	case ".odt":
		return KindODT
	case ".epub":
		return KindEPUB
	case ".eml", ".msg":
		return KindEmail
	case ".zip", ".tar", ".tgz", ".7z":
		return KindArchive
	case ".gz":
		if strings.HasSuffix(strings.ToLower(filename), ".tar.gz") {
			return KindArchive
		}
	case ".json":
		return KindJSON
	case ".yaml", ".yml":
		return KindYAML
	case ".ini", ".conf":
		return KindINI
	case ".ics":
		return KindCalendar
	case ".vcf":
		return KindContacts
	case ".log":
		return KindLog
	case ".tex":
		return KindLaTeX
	case ".ipynb":
		return KindNotebook
	}
	if _, ok := codeLangs[ext]; ok {
		return KindCode
	}

	// Fall back to the declared media type.
	switch {
	case mediaType == "application/pdf":
		return KindPDF
	case mediaType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return KindDOCX
	case mediaType == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return KindXLSX
	case mediaType == "application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return KindPPTX
	case strings.HasPrefix(mediaType, "image/"):
		return KindImage
	case mediaType == "text/html":
		return KindHTML
	case mediaType == "application/xml", mediaType == "text/xml":
		return KindXML
	case strings.HasPrefix(mediaType, "text/"):
		return KindText
	}
	return KindUnknown
}

// Result is the outcome of normalizing one file. Markdown is never empty and
// never raw binary; on failure it carries a descriptive message instead.
type Result struct {
	Markdown  string
	Kind      Kind
	CharCount int
	WordCount int
}

// Converter normalizes file bytes into Markdown text.
type Converter struct {
	logger *zap.Logger
	ocr    *OCRClient

	// minPDFText is the character count the accumulated PDF text must
	// exceed before the remaining extraction tiers are skipped.
	minPDFText int

	// PDF extraction tiers, swappable in tests.
	pdfText    func(data []byte) (string, error)
	pdfStreams func(data []byte) (string, error)
	pdfImages  func(data []byte) (map[int][][]byte, error)
}

// New creates a Converter. ocr may be nil; OCR-dependent extractors then
// degrade to descriptive messages.
func New(logger *zap.Logger, ocr *OCRClient) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Converter{
		logger:     logger,
		ocr:        ocr,
		minPDFText: 100,
	}
	c.pdfText = c.pdfTextLayer
	c.pdfStreams = c.pdfContentStreams
	c.pdfImages = c.pdfPageImages
	return c
}

// Convert normalizes raw file bytes into Markdown. It never panics and never
// returns an error: uploads are user-supplied and arbitrary, so every failure
// becomes a readable message.
func (c *Converter) Convert(data []byte, filename, mediaType string) (res Result) {
	kind := Detect(filename, mediaType)

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("extractor panic",
				zap.String("filename", filename),
				zap.String("kind", string(kind)),
				zap.Any("panic", r))
			res = c.finish(kind, extractionError(filename, fmt.Errorf("%v", r)))
		}
	}()

	var markdown string
	switch kind {
	case KindMarkdown:
		markdown = decodeText(data)
	case KindText:
		markdown = fmt.Sprintf("```text\n%s\n```", decodeText(data))
	case KindCSV:
		markdown = c.extractCSV(data, filename)
	case KindXLSX:
		markdown = c.extractXLSX(data, filename)
	case KindPDF:
		markdown = c.extractPDF(data, filename)
	case KindDOCX:
		markdown = c.extractDOCX(data, filename)
	case KindPPTX:
		markdown = c.extractPPTX(data, filename)
	case KindImage:
		markdown = c.extractImage(data, filename)
	case KindHTML:
		markdown = c.extractHTML(data, filename)
	case KindXML:
		markdown = c.extractXML(data, filename)
	case KindRTF:
		markdown = c.extractRTF(data, filename)
	case KindODT:
		markdown = c.extractODT(data, filename)
	case KindEPUB:
		markdown = c.extractEPUB(data, filename)
	case KindEmail:
		markdown = c.extractEmail(data, filename)
	case KindArchive:
		markdown = c.extractArchive(data, filename)
	case KindJSON:
		markdown = c.extractJSON(data, filename)
	case KindYAML:
		markdown = c.extractYAML(data, filename)
	case KindINI:
		markdown = c.extractINI(data, filename)
	case KindCalendar:
		markdown = c.extractCalendar(data, filename)
	case KindContacts:
		markdown = c.extractContacts(data, filename)
	case KindLog:
		markdown = c.extractLog(data, filename)
	case KindLaTeX:
		markdown = c.extractLaTeX(data, filename)
	case KindNotebook:
		markdown = c.extractNotebook(data, filename)
	case KindCode:
		markdown = c.extractCode(data, filename)
	default:
		markdown = c.extractUnknown(data, filename, mediaType)
	}

	if strings.TrimSpace(markdown) == "" {
		markdown = noContent(filename)
	}
	return c.finish(kind, markdown)
}

func (c *Converter) finish(kind Kind, markdown string) Result {
	return Result{
		Markdown:  markdown,
		Kind:      kind,
		CharCount: utf8.RuneCountInString(markdown),
		WordCount: len(strings.Fields(markdown)),
	}
}

// extractCode fences source code with a language tag derived from the extension.
func (c *Converter) extractCode(data []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	lang := codeLangs[ext]
	if lang == "" {
		lang = "text"
	}
	return fmt.Sprintf("# Code-Datei: %s\n\n```%s\n%s\n```", filename, lang, decodeText(data))
}

// extractUnknown attempts a UTF-8 decode as last resort; undecodable binary
// yields a structured placeholder, never raw bytes.
func (c *Converter) extractUnknown(data []byte, filename, mediaType string) string {
	if utf8.Valid(data) {
		return fmt.Sprintf("```\n%s\n```", string(data))
	}
	return fmt.Sprintf("**📄 %s**\n\n> **Dateityp:** %s\n> **Größe:** %d Bytes\n> **Status:** Binärdatei - Inhalt kann nicht angezeigt werden\n\n*Diese Datei wurde hochgeladen, aber der Inhalt kann nicht als Text dargestellt werden.*",
		filename, mediaType, len(data))
}

func extractionError(filename string, err error) string {
	return fmt.Sprintf("**Fehler beim Extrahieren der Inhalte von %s**: %v", filename, err)
}

func noContent(filename string) string {
	return fmt.Sprintf("**Keine lesbaren Inhalte in %s gefunden.**", filename)
}
