// Package office extracts plain text from Office Open XML containers
// (docx, xlsx, pptx) so document content can be returned inline instead of
// as an opaque binary blob.
package office

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strings"
)

// MIME types of the supported container formats.
const (
	MimeTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTypeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeTypePptx = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// IsOfficeMime reports whether mimeType names a supported container.
func IsOfficeMime(mimeType string) bool {
	switch mimeType {
	case MimeTypeDocx, MimeTypeXlsx, MimeTypePptx:
		return true
	}
	return false
}

// ExtractText pulls the human-readable text out of an OOXML payload.
// Returns ok=false when the payload is not a readable container or yields
// no text; the caller decides the fallback (UTF-8 decode or a binary note).
func ExtractText(data []byte, mimeType string) (string, bool) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}

	var text string
	switch mimeType {
	case MimeTypeDocx:
		text = extractParts(zr, func(name string) bool {
			return name == "word/document.xml"
		})
	case MimeTypeXlsx:
		text = extractParts(zr, func(name string) bool {
			return name == "xl/sharedStrings.xml"
		})
	case MimeTypePptx:
		text = extractParts(zr, func(name string) bool {
			return strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml")
		})
	default:
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}

// extractParts concatenates the text of every archive member matching the
// filter, in name order so slide numbering stays stable.
func extractParts(zr *zip.Reader, match func(name string) bool) string {
	var names []string
	files := make(map[string]*zip.File)
	for _, f := range zr.File {
		if match(f.Name) {
			names = append(names, f.Name)
			files[f.Name] = f
		}
	}
	sort.Strings(names)

	var parts []string
	for _, name := range names {
		rc, err := files[name].Open()
		if err != nil {
			continue
		}
		part := extractXMLText(rc)
		rc.Close()
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n\n")
}

// extractXMLText walks an OOXML part collecting the contents of <t> runs.
// Paragraph and row boundaries become newlines; everything else is ignored.
func extractXMLText(r io.Reader) string {
	decoder := xml.NewDecoder(r)

	var b strings.Builder
	var inText bool
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p", "row", "si":
				b.WriteString("\n")
			case "tab":
				b.WriteString("\t")
			}
		case xml.CharData:
			if inText {
				b.Write(el)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
