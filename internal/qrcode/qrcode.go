// Package qrcode reads QR codes from PNG images and image data URLs.
package qrcode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/caiguanhao/readqr"

	"image/png"
)

const (
	maxDataSz = 1 << 20
	dataHdr   = `data:image/png;base64,`
)

var (
	ErrInvalidQR = errors.New("invalid QR code")

	errHdrLen     = errors.New("unexpected header length")
	errInvalidHdr = errors.New("invalid header")
	errNoData     = errors.New("no image data")
)

// IsDataURL returns true if s looks like the base64 PNG image data URL.
func IsDataURL(s string) bool {
	return len(s) > len(dataHdr) && strings.EqualFold(s[:len(dataHdr)], dataHdr)
}

// DecodeDataURL decodes the QR code in the base64 PNG data URL.
func DecodeDataURL(urlImgData string) (string, error) {
	pngbytes, err := decodeB64(strings.NewReader(urlImgData))
	if err != nil {
		return "", err
	}
	return DecodePNG(pngbytes)
}

// DecodePNG decodes the QR code in the PNG image.
func DecodePNG(data []byte) (string, error) {
	img, err := decodeImage(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return decodeQR(img)
}

func decodeB64(r io.Reader) ([]byte, error) {
	const hdrLen = int64(len(dataHdr))
	data, err := io.ReadAll(io.LimitReader(r, hdrLen))
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if int64(len(data)) < hdrLen {
		return nil, errHdrLen
	}
	if !strings.EqualFold(dataHdr, string(data)) {
		return nil, errInvalidHdr
	}

	b64r := base64.NewDecoder(base64.StdEncoding, io.LimitReader(r, maxDataSz))
	decoded, err := io.ReadAll(b64r)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if len(decoded) == 0 {
		return nil, errNoData
	}
	return decoded, nil
}

func decodeImage(r io.Reader) (image.Image, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, ErrInvalidQR
	}
	return img, nil
}

func decodeQR(m image.Image) (string, error) {
	result, err := readqr.DecodeImage(m)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidQR, err)
	}
	return result, nil
}
