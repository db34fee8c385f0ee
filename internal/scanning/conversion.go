package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/heic"
)

// DefaultMaxDimension is the longest side, in pixels, sent upstream
const DefaultMaxDimension = 2000

// preparedImage is the payload actually submitted to a model
type preparedImage struct {
	data      []byte
	mimeType  string
	converted bool
}

// isHEICFormat checks if the image data is in HEIC/HEIF format
// HEIC files carry an ftyp box at offset 4 with a HEIC-related brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// prepareImage makes an upload acceptable to the models: HEIC/HEIF photos are
// decoded and re-encoded as JPEG, and images larger than maxDimension are
// downscaled. Formats the standard decoders do not know are passed through.
func prepareImage(imageData []byte, contentType string, maxDimension int) (*preparedImage, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err := heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("%w: decoding HEIC/HEIF image: %v", ErrImageDecode, err)
		}
		return encodeImage(fit(img, maxDimension), imaging.JPEG)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			// e.g. WebP, which the model accepts as-is
			return &preparedImage{data: imageData, mimeType: mimeType}, nil
		}
		return nil, fmt.Errorf("%w: reading image header: %v", ErrImageDecode, err)
	}

	if maxDimension <= 0 || (cfg.Width <= maxDimension && cfg.Height <= maxDimension) {
		return &preparedImage{data: imageData, mimeType: mimeType}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s image: %v", ErrImageDecode, format, err)
	}

	target := imaging.JPEG
	if format == "png" {
		target = imaging.PNG
	}
	return encodeImage(fit(img, maxDimension), target)
}

// fit scales img down so neither side exceeds maxDimension
func fit(img image.Image, maxDimension int) image.Image {
	if maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDimension && b.Dy() <= maxDimension {
		return img
	}
	return imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
}

func encodeImage(img image.Image, format imaging.Format) (*preparedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encoding %v: %w", format, err)
	}

	mimeType := "image/jpeg"
	if format == imaging.PNG {
		mimeType = "image/png"
	}
	return &preparedImage{data: buf.Bytes(), mimeType: mimeType, converted: true}, nil
}
