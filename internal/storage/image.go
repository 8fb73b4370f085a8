package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

const (
	// MaxImageWidth is the widest image kept after processing
	MaxImageWidth = 2000
	jpegQuality   = 85
)

// ErrUnsupportedImage is returned for payloads that cannot be decoded as an image
var ErrUnsupportedImage = errors.New("unsupported image format")

// AllowedContentTypes lists the upload MIME types accepted by the API
var AllowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// ProcessImage decodes an uploaded image, shrinks it to MaxImageWidth and
// re-encodes it as JPEG. It returns the encoded bytes and their content type.
func ProcessImage(r io.Reader) ([]byte, string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	if img.Bounds().Dx() > MaxImageWidth {
		img = imaging.Resize(img, MaxImageWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), "image/jpeg", nil
}
