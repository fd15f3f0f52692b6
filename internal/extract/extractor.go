// Package extract provides card text extraction from files dropped into the inbox.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/meishi/internal/ocr"
)

// ErrUnsupported is returned for extensions no extractor handles.
var ErrUnsupported = errors.New("unsupported file type")

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true, ".bmp": true,
}

// IsImage reports whether ext (with leading dot) is an image format sent to OCR.
func IsImage(ext string) bool {
	return imageExts[strings.ToLower(ext)]
}

// Extractor extracts card text from files.
type Extractor struct {
	rec ocr.Recognizer
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRecognizer enables image files through rec.
func WithRecognizer(rec ocr.Recognizer) Option {
	return func(e *Extractor) { e.rec = rec }
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the file at path and returns its card text with line breaks kept.
// Returns an error if the file cannot be read or the format is unsupported.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(ctx, content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(ctx context.Context, content []byte, ext string) (string, error) {
	ext = strings.ToLower(ext)
	switch {
	case ext == ".pdf":
		return extractPDF(content)
	case ext == ".docx":
		return extractDOCX(content)
	case ext == ".odt", ext == ".rtf":
		return extractWithCat(content)
	case ext == ".txt", ext == "":
		return extractPlain(content)
	case IsImage(ext):
		if e.rec == nil {
			return "", fmt.Errorf("%s: %w", ext, ocr.ErrUnavailable)
		}
		text, err := e.rec.Recognize(ctx, content)
		if err != nil {
			return "", err
		}
		// a single photo is treated as the front of the card
		combined, err := ocr.CombineSides(text, "")
		if err != nil {
			return "", err
		}
		return combined, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}
