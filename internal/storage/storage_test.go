package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngPixel is a 1x1 transparent PNG.
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func TestDecodeDataURI(t *testing.T) {
	img, err := DecodeDataURI(dataURI("image/png", pngPixel))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, ".png", img.Extension)
	assert.Equal(t, pngPixel, img.Data)
}

func TestDecodeDataURIRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"not a data uri": "https://example.com/soup.png",
		"not base64":     "data:image/png;base64,@@@",
		"missing marker": "data:image/png," + base64.StdEncoding.EncodeToString(pngPixel),
		"empty payload":  "data:image/png;base64,",
		"not an image":   dataURI("image/png", []byte("plain text pretending to be an image")),
	}
	for name, uri := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDataURI(uri)
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/media/")

	url, err := store.Save(context.Background(), pngPixel, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/recipes/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/media/")))
	require.NoError(t, err)
	assert.Equal(t, pngPixel, data)
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3StoreSave(t *testing.T) {
	client := &fakeS3{}
	store := &S3Store{client: client, bucket: "images", publicURL: func(key string) string {
		return "https://cdn.example/" + key
	}}

	url, err := store.Save(context.Background(), pngPixel, "image/png")
	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "images", *client.input.Bucket)
	assert.Equal(t, "image/png", *client.input.ContentType)
	assert.Equal(t, "https://cdn.example/"+*client.input.Key, url)
	assert.Equal(t, pngPixel, client.body)
}

func TestS3StoreSaveError(t *testing.T) {
	store := &S3Store{client: &fakeS3{err: errors.New("boom")}, bucket: "images", publicURL: func(k string) string { return k }}
	_, err := store.Save(context.Background(), pngPixel, "image/png")
	assert.ErrorContains(t, err, "failed to upload to S3")
}
