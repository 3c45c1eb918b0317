// Package storage keeps recipe images in S3 or on local disk.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageSize bounds a decoded image payload.
const MaxImageSize = 10 << 20

// ErrInvalidImage is returned for payloads that are not base64 image data URIs.
var ErrInvalidImage = errors.New("invalid image")

// ImageStore persists an image and returns the reference clients use to fetch it.
type ImageStore interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>" and checks that
// the payload really is an image, whatever the declared type says.
func DecodeDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: expected a base64 data URI", ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxImageSize)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: content is %s", ErrInvalidImage, mt.String())
	}
	return &Image{Data: data, ContentType: mt.String(), Extension: mt.Extension()}, nil
}

// objectKey names a new object under the recipes prefix.
func objectKey(contentType string) string {
	ext := ""
	if mt := mimetype.Lookup(contentType); mt != nil {
		ext = mt.Extension()
	}
	return "recipes/" + uuid.New().String() + ext
}
