// Package storage keeps uploaded post images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize bounds a single uploaded image.
const MaxImageSize = 5 << 20

var (
	ErrNotImage = errors.New("uploaded file is not an image")
	ErrTooLarge = errors.New("uploaded file is too large")
)

// BlobStore writes objects and resolves their public URLs.
type BlobStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	// Delete removes key. A missing key is not an error.
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Image is an uploaded image read into memory.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReadImage loads the uploaded file and checks that it is a reasonably sized
// image.
func ReadImage(fh *multipart.FileHeader) (*Image, error) {
	if fh.Size > MaxImageSize {
		return nil, ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotImage
	}
	return &Image{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

// SaveImage stores img under a fresh posts/ key and returns the key.
func SaveImage(ctx context.Context, store BlobStore, img *Image) (string, error) {
	key := "posts/" + uuid.NewString() + strings.ToLower(filepath.Ext(img.Filename))
	if err := store.Put(ctx, key, img.Data, img.ContentType); err != nil {
		return "", fmt.Errorf("store image %s: %w", key, err)
	}
	return key, nil
}
