// Package extract pulls plain text out of uploaded files so they can be
// chunked and merged into a provider's index alongside the corpus.
package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	platonerrors "github.com/elenchus/platon/internal/errors"
)

// Upload is one user-supplied file to merge into the index.
type Upload struct {
	// Name is the display name recorded as the entry source.
	Name string

	// Path is the file's on-disk location.
	Path string
}

// FromPath builds an Upload from a file path, using the base name.
func FromPath(path string) Upload {
	return Upload{Name: filepath.Base(path), Path: path}
}

// Source returns the index source label for this upload.
func (u Upload) Source() string {
	return "uploaded_pdf_" + u.Name
}

// Text extracts the upload's text content.
// PDF files go through the PDF reader; anything else is treated as UTF-8
// text. Failures are recoverable per file: the caller skips the upload and
// continues with the rest.
func (u Upload) Text() (string, error) {
	var text string
	var err error

	switch strings.ToLower(filepath.Ext(u.Path)) {
	case ".pdf":
		text, err = pdfText(u.Path)
	default:
		text, err = plainText(u.Path)
	}
	if err != nil {
		return "", platonerrors.UploadExtractionError(u.Name, err)
	}

	if strings.TrimSpace(text) == "" {
		return "", platonerrors.UploadExtractionError(u.Name,
			fmt.Errorf("no extractable text"))
	}

	return text, nil
}

// plainText reads a file as UTF-8 text.
func plainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	return string(data), nil
}

// pdfText extracts the concatenated plain text of a PDF.
func pdfText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = file.Close() }()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	return buf.String(), nil
}
