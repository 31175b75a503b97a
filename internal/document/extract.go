// Package document extracts plain text from uploaded resume files.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ErrUnsupportedFormat is returned for file types no extractor handles.
var ErrUnsupportedFormat = errors.New("unsupported file format: use pdf, docx, txt or md")

type format int

const (
	formatUnknown format = iota
	formatPDF
	formatDocx
	formatText
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
	spacePattern = regexp.MustCompile(`[ \t\r\f\v]+`)
	// newlinePattern swallows the whole whitespace run around a line break,
	// so "\r\n\r\n" and " \n " both collapse to a single "\n".
	newlinePattern = regexp.MustCompile(`[ \t\r\f\v]*\n[ \t\r\f\v\n]*`)
)

// ExtractText converts an uploaded resume into plain text. The file
// extension decides the format; the content type is a fallback for uploads
// without a useful name.
func ExtractText(filename, contentType string, data []byte) (string, error) {
	switch detectFormat(filename, contentType) {
	case formatPDF:
		return extractPDF(data)
	case formatDocx:
		return extractDocx(data)
	case formatText:
		return normalizeWhitespace(string(data)), nil
	default:
		return "", ErrUnsupportedFormat
	}
}

func detectFormat(filename, contentType string) format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return formatPDF
	case ".docx":
		return formatDocx
	case ".txt", ".md":
		return formatText
	}

	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "application/pdf":
		return formatPDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return formatDocx
	case "text/plain", "text/markdown":
		return formatText
	}

	return formatUnknown
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var builder strings.Builder

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		builder.WriteString(text)
		builder.WriteString("\n")
	}

	result := normalizeWhitespace(builder.String())
	if result == "" {
		return "", errors.New("pdf contains no extractable text")
	}

	return result, nil
}

func extractDocx(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()

	// GetContent returns the raw document.xml markup; turn paragraph ends
	// into newlines before stripping the remaining tags.
	content := doc.Editable().GetContent()
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:tab/>", "\t")
	content = tagPattern.ReplaceAllString(content, " ")

	return normalizeWhitespace(content), nil
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = newlinePattern.ReplaceAllString(s, "\n")
	s = spacePattern.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}
