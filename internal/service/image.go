package service

import (
	"bytes"
	"errors"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// decodeImageFormat validates that data is a parseable image and returns its
// format name ("jpeg", "png", "webp"). Only the header is decoded.
func decodeImageFormat(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty image")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	return format, nil
}
