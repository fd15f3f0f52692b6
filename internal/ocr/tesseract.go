//go:build tesseract && cgo
// +build tesseract,cgo

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer implements Recognizer using the gosseract client.
type TesseractRecognizer struct {
	languages      []string
	tessdataPrefix string
	clientFactory  func() *gosseract.Client
}

// NewTesseractRecognizer returns a recognizer for the given Tesseract
// languages (default "eng"). tessdataPrefix may be empty to use the system path.
func NewTesseractRecognizer(languages []string, tessdataPrefix string) (*TesseractRecognizer, error) {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractRecognizer{
		languages:      languages,
		tessdataPrefix: tessdataPrefix,
		clientFactory:  gosseract.NewClient,
	}, nil
}

// Recognize runs Tesseract on one image. A fresh client is used per call, so
// the recognizer is safe for concurrent use.
func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := r.clientFactory()
	defer c.Close()

	if r.tessdataPrefix != "" {
		c.TessdataPrefix = r.tessdataPrefix
	}
	if err := c.SetLanguage(r.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	// sparse text: cards are short lines scattered over the image
	if err := c.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return "", fmt.Errorf("set page segmentation: %w", err)
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Version reports the linked Tesseract version.
func Version() string {
	c := gosseract.NewClient()
	defer c.Close()
	return c.Version()
}
