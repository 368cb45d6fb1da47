package convert

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"
	"golang.org/x/net/html"
)

// extractEmail dispatches on the container format: RFC 5322 (.eml) or the
// Outlook compound file format (.msg).
func (c *Converter) extractEmail(data []byte, filename string) string {
	if strings.HasSuffix(strings.ToLower(filename), ".msg") {
		return c.extractMSG(data, filename)
	}
	return c.extractEML(data, filename)
}

// extractEML renders headers and the decoded text body of an RFC 5322 message.
func (c *Converter) extractEML(data []byte, filename string) string {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return extractionError(filename, err)
	}

	dec := new(mime.WordDecoder)
	decodeHeader := func(v string) string {
		if decoded, err := dec.DecodeHeader(v); err == nil {
			return decoded
		}
		return v
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# E-Mail: %s\n\n", filename)
	if v := msg.Header.Get("From"); v != "" {
		fmt.Fprintf(&sb, "**Von:** %s\n", decodeHeader(v))
	}
	if v := msg.Header.Get("To"); v != "" {
		fmt.Fprintf(&sb, "**An:** %s\n", decodeHeader(v))
	}
	if v := msg.Header.Get("Subject"); v != "" {
		fmt.Fprintf(&sb, "**Betreff:** %s\n", decodeHeader(v))
	}
	if v := msg.Header.Get("Date"); v != "" {
		fmt.Fprintf(&sb, "**Datum:** %s\n", v)
	}
	sb.WriteString("\n")

	body, attachments := emailBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if body != "" {
		sb.WriteString(body + "\n")
	}
	if len(attachments) > 0 {
		sb.WriteString("\n## Anhänge:\n\n")
		for _, name := range attachments {
			fmt.Fprintf(&sb, "- %s\n", name)
		}
	}
	return strings.TrimSpace(sb.String())
}

// emailBody resolves the message body, preferring text/plain parts of a
// multipart message, and collects attachment filenames.
func emailBody(contentType, transferEncoding string, r io.Reader) (string, []string) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		raw, _ := io.ReadAll(r)
		return strings.TrimSpace(decodeText(raw)), nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		var plain, fallback string
		var attachments []string
		mr := multipart.NewReader(r, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			if name := part.FileName(); name != "" {
				attachments = append(attachments, name)
				continue
			}
			partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
			body, nested := emailBody(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part)
			attachments = append(attachments, nested...)
			switch {
			case partType == "text/plain" && plain == "":
				plain = body
			case fallback == "":
				fallback = body
			}
		}
		if plain != "" {
			return plain, attachments
		}
		return fallback, attachments
	}

	raw, _ := io.ReadAll(decodeTransfer(r, transferEncoding))
	text := strings.TrimSpace(decodeText(raw))
	if mediaType == "text/html" {
		if doc, err := html.Parse(strings.NewReader(text)); err == nil {
			var sb strings.Builder
			walkHTML(doc, &sb)
			return strings.TrimSpace(sb.String()), nil
		}
	}
	return text, nil
}

func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// MAPI property streams inside a .msg compound file. The 001F suffix marks
// UTF-16LE string properties.
const (
	msgPropSubject = "__substg1.0_0037001F"
	msgPropSender  = "__substg1.0_0C1A001F"
	msgPropTo      = "__substg1.0_0E04001F"
	msgPropBody    = "__substg1.0_1000001F"
)

// extractMSG reads an Outlook message out of its compound-file container.
func (c *Converter) extractMSG(data []byte, filename string) string {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return extractionError(filename, err)
	}

	props := map[string]string{}
	attachmentDirs := map[string]bool{}
	var attachmentNames []string

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		name := entry.Name
		pathParts := entry.Path

		// Attachment display names live under __attach_version1.0_#N.
		if len(pathParts) > 0 && strings.HasPrefix(pathParts[0], "__attach_version1.0_") {
			if name == "__substg1.0_3001001F" && !attachmentDirs[pathParts[0]] {
				raw, _ := io.ReadAll(entry)
				if display := decodeUTF16LE(raw); display != "" {
					attachmentDirs[pathParts[0]] = true
					attachmentNames = append(attachmentNames, display)
				}
			}
			continue
		}

		switch name {
		case msgPropSubject, msgPropSender, msgPropTo, msgPropBody:
			raw, _ := io.ReadAll(entry)
			props[name] = decodeUTF16LE(raw)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# E-Mail: %s\n\n", filename)
	if v := props[msgPropSender]; v != "" {
		fmt.Fprintf(&sb, "**Von:** %s\n", v)
	}
	if v := props[msgPropTo]; v != "" {
		fmt.Fprintf(&sb, "**An:** %s\n", v)
	}
	if v := props[msgPropSubject]; v != "" {
		fmt.Fprintf(&sb, "**Betreff:** %s\n", v)
	}
	sb.WriteString("\n")
	if v := props[msgPropBody]; v != "" {
		sb.WriteString(v + "\n")
	}
	if len(attachmentNames) > 0 {
		sb.WriteString("\n## Anhänge:\n\n")
		for _, name := range attachmentNames {
			fmt.Fprintf(&sb, "- %s\n", name)
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == strings.TrimSpace(fmt.Sprintf("# E-Mail: %s", filename)) {
		return noContent(filename)
	}
	return out
}

// decodeUTF16LE converts a UTF-16LE property stream to a string.
func decodeUTF16LE(raw []byte) string {
	if len(raw) < 2 {
		return ""
	}
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		units = append(units, uint16(raw[i])|uint16(raw[i+1])<<8)
	}
	return strings.TrimRight(string(utf16.Decode(units)), "\x00")
}
