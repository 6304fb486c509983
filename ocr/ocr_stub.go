//go:build !ocr

package ocr

import (
	"context"
	"image"

	"github.com/tsawler/pdfannotate/model"
	"github.com/tsawler/pdfannotate/text"
)

// Client is the stand-in used when OCR is not compiled in.
type Client struct{}

// New returns ErrOCRNotEnabled.
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op. It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// SetLanguage returns ErrOCRNotEnabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// SetPageSegMode returns ErrOCRNotEnabled.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return ErrOCRNotEnabled
}

// RecognizeImage returns ErrOCRNotEnabled.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// Words returns ErrOCRNotEnabled.
func (c *Client) Words(imageData []byte) ([]Word, error) {
	return nil, ErrOCRNotEnabled
}

// PageText returns ErrOCRNotEnabled.
func (c *Client) PageText(ctx context.Context, img image.Image, vp model.Viewport) (*text.TextContent, error) {
	return nil, ErrOCRNotEnabled
}
