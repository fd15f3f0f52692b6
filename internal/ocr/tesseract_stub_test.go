//go:build !tesseract || !cgo
// +build !tesseract !cgo

package ocr

import (
	"context"
	"errors"
	"testing"
)

func TestTesseractRecognizer_unavailable(t *testing.T) {
	rec, err := NewTesseractRecognizer([]string{"eng"}, "")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("NewTesseractRecognizer error = %v, want ErrUnavailable", err)
	}
	if rec != nil {
		t.Errorf("recognizer = %v, want nil", rec)
	}
	var stub TesseractRecognizer
	if _, err := stub.Recognize(context.Background(), []byte("png")); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Recognize error = %v, want ErrUnavailable", err)
	}
	if Version() != "unavailable" {
		t.Errorf("Version() = %q", Version())
	}
}
