package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// MaxUploadSize bounds the size of an uploaded photo.
const MaxUploadSize = 5 << 20 // 5 MB

// allowedTypes maps accepted image content types to file extensions.
var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Storage persists uploaded photos and returns a URL the listing can
// reference.
type Storage interface {
	Save(ctx context.Context, contentType string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// ExtForContentType returns the file extension for an accepted image
// content type, or an error for anything else.
func ExtForContentType(contentType string) (string, error) {
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}
	return ext, nil
}

// objectName builds a photo file name: food_<timestamp>_<random>.<ext>
func objectName(ext string) string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return fmt.Sprintf("food_%d_%s.%s", time.Now().UnixMilli(), hex.EncodeToString(buf), ext)
}
