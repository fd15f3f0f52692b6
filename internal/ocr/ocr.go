// Package ocr turns photos of the two sides of a business card into the raw
// scan text the parser consumes.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNoImages is returned when neither side has an image.
	ErrNoImages = errors.New("no card images provided")
	// ErrNoText is returned when recognition finds no text on either side.
	ErrNoText = errors.New("no text detected in the images")
	// ErrUnavailable is returned when the binary was built without Tesseract.
	ErrUnavailable = errors.New("OCR not built in (build with -tags tesseract and cgo, with libtesseract installed)")
)

// Recognizer extracts text from one encoded image (PNG, JPEG, TIFF, ...).
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

const (
	frontHeader = "--- FRONT SIDE ---"
	backHeader  = "--- BACK SIDE ---"
)

// CombineSides joins per-side text into one raw scan. Each non-empty side is
// written under its marker line; a second side is separated by a blank line.
func CombineSides(front, back string) (string, error) {
	var b strings.Builder
	for _, side := range []struct{ header, text string }{
		{frontHeader, front},
		{backHeader, back},
	} {
		text := strings.TrimSpace(side.text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s\n%s\n", side.header, text)
	}
	combined := strings.TrimSpace(b.String())
	if combined == "" {
		return "", ErrNoText
	}
	return combined, nil
}

// Scanner runs a Recognizer over card images.
type Scanner struct {
	rec    Recognizer
	logger *zap.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogger sets a logger for per-side debug output.
func WithLogger(l *zap.Logger) ScannerOption {
	return func(s *Scanner) { s.logger = l }
}

// NewScanner creates a Scanner around rec.
func NewScanner(rec Recognizer, opts ...ScannerOption) *Scanner {
	s := &Scanner{rec: rec, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanImages recognizes the front and back images (either may be nil) and
// returns the combined raw scan.
func (s *Scanner) ScanImages(ctx context.Context, front, back []byte) (string, error) {
	if len(front) == 0 && len(back) == 0 {
		return "", ErrNoImages
	}
	var texts [2]string
	for i, img := range [][]byte{front, back} {
		if len(img) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		side := [...]string{"front", "back"}[i]
		text, err := s.rec.Recognize(ctx, img)
		if err != nil {
			return "", fmt.Errorf("recognize %s side: %w", side, err)
		}
		s.logger.Debug("side recognized", zap.String("side", side), zap.Int("chars", len(text)))
		texts[i] = text
	}
	return CombineSides(texts[0], texts[1])
}
