//go:build !tesseract || !cgo
// +build !tesseract !cgo

package ocr

import "context"

// TesseractRecognizer stub type when built without the tesseract tag or CGO
// (see tesseract.go for the real implementation).
type TesseractRecognizer struct{}

// NewTesseractRecognizer returns ErrUnavailable; build with -tags tesseract to link libtesseract.
func NewTesseractRecognizer(_ []string, _ string) (*TesseractRecognizer, error) {
	return nil, ErrUnavailable
}

// Recognize always fails in this build.
func (r *TesseractRecognizer) Recognize(_ context.Context, _ []byte) (string, error) {
	return "", ErrUnavailable
}

// Version reports that Tesseract is not linked.
func Version() string {
	return "unavailable"
}
