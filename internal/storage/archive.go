package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strings"
	"time"

	"github.com/civiz/civiz/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// ImageArchive copies generated images from short-lived provider URLs into
// object storage and hands back a stable public URL. Provider URLs expire
// within hours; anything the store displays long-term must be re-homed.
type ImageArchive struct {
	storage ObjectStorage
	client  *resty.Client
}

// NewImageArchive creates an image archive backed by the given storage.
// Parameters:
//   - store: object storage the archive uploads into.
// Returns:
//   - *ImageArchive: initialized archive.
func NewImageArchive(store ObjectStorage) *ImageArchive {
	client := resty.New()
	client.SetTimeout(60 * time.Second)

	return &ImageArchive{
		storage: store,
		client:  client,
	}
}

// Archive downloads the image at sourceURL and uploads it under a key derived
// from the address, returning the stable public URL.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sourceURL: provider URL of the generated image.
//   - address: street address the image belongs to, used for the object key.
// Returns:
//   - string: public URL of the archived object.
//   - error: non-nil if download, decode, or upload fails.
func (a *ImageArchive) Archive(ctx context.Context, sourceURL, address string) (string, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		Get(sourceURL)
	if err != nil {
		return "", fmt.Errorf("failed to download generated image: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("failed to download generated image: HTTP %d", resp.StatusCode())
	}

	data := resp.Body()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode generated image: %w", err)
	}

	key := buildArchiveKey(address, format)
	contentType := mimeTypeFor(format)

	if err := a.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", fmt.Errorf("failed to archive generated image: %w", err)
	}

	logger.With(logger.Fields{
		logger.FieldSize: len(data),
	}).Info(ctx, "Archived generated image: key=%s, format=%s, dimensions=%dx%d", key, format, cfg.Width, cfg.Height)

	return a.storage.GetURL(key), nil
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
var whitespace = regexp.MustCompile(`\s+`)

// buildArchiveKey derives an object key from the address plus a short random
// suffix so repeated visions for the same address never collide.
func buildArchiveKey(address, format string) string {
	name := unsafeKeyChars.ReplaceAllString(address, "")
	name = whitespace.ReplaceAllString(name, "_")
	name = strings.ToLower(name)
	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" {
		name = "vision"
	}

	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("visions/%s-%s.%s", name, suffix, extensionFor(format))
}

func extensionFor(format string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "":
		return "png"
	default:
		return format
	}
}

func mimeTypeFor(format string) string {
	switch format {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
