package validation

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/webp"
)

// MaxImagesPerRecord caps the media list of a post or story.
const MaxImagesPerRecord = 10

var (
	ErrEmptyUpload     = errors.New("uploaded file is empty")
	ErrUnsupportedType = errors.New("unsupported image format, use jpeg, png, gif or webp")
)

var contentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// SniffImage reads the whole upload, checks its size and decodes the image
// header. It returns the detected content type and the bytes read.
func SniffImage(r io.Reader, maxBytes int64) (string, []byte, error) {
	limited := r
	if maxBytes > 0 {
		limited = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(limited)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", nil, ErrEmptyUpload
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", nil, fmt.Errorf("file exceeds %d MB limit", maxBytes>>20)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", nil, ErrUnsupportedType
	}
	contentType, ok := contentTypes[format]
	if !ok {
		return "", nil, ErrUnsupportedType
	}
	return contentType, data, nil
}
