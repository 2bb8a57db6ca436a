// Package extract turns uploaded document bytes into plain text.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hyperjump/docquiz/internal/models"
)

// Extractor extracts plain text from document content.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractBytes extracts text from content. The filename extension selects the format:
// .pdf, .docx and .xlsx are parsed; anything else is decoded as UTF-8 with invalid
// sequences replaced. Every failure wraps models.ErrExtractionFailure.
func (e *Extractor) ExtractBytes(content []byte, filename string) (string, error) {
	var (
		text string
		err  error
	)
	switch Format(filename) {
	case ".pdf":
		text, err = extractPDF(content)
	case ".docx":
		text, err = extractDOCX(content)
	case ".xlsx":
		text, err = extractExcel(content)
	default:
		text = extractPlain(content)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", models.ErrExtractionFailure, filename, err)
	}
	return text, nil
}

// Format returns the lower-cased extension of filename, including the dot.
func Format(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
