package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storyloom/internal/storage"
)

// UploadURLPrefix is where stored images are served from.
const UploadURLPrefix = "/api/uploads/"

type uploader struct {
	store   storage.Storage
	maxSize int64
	log     *zap.Logger
	now     func() time.Time
}

func newUploader(store storage.Storage, maxSize int64, log *zap.Logger) *uploader {
	return &uploader{store: store, maxSize: maxSize, log: log, now: time.Now}
}

// save validates and stores the upload, returning its public URL and stored name.
func (u *uploader) save(ctx context.Context, img *ImageUpload) (string, string, error) {
	contentType, err := storage.ValidateImage(img.File, img.Filename, img.Size, u.maxSize)
	if err != nil {
		return "", "", err
	}

	name := storage.GenerateFilename(img.Field, img.Filename, u.now())
	if err := u.store.Save(ctx, name, img.File, img.Size, contentType); err != nil {
		return "", "", fmt.Errorf("store upload: %w", err)
	}

	u.log.Info("File uploaded", zap.String("filename", name), zap.Int64("size", img.Size))
	return UploadURLPrefix + name, name, nil
}

// discard removes a stored upload; failures are only logged.
func (u *uploader) discard(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := u.store.Delete(ctx, name); err != nil {
		u.log.Warn("Failed to remove upload", zap.String("filename", name), zap.Error(err))
	}
}

// discardURL removes the file behind a URL this service produced earlier.
func (u *uploader) discardURL(ctx context.Context, url string) {
	if name, ok := strings.CutPrefix(url, UploadURLPrefix); ok {
		u.discard(ctx, name)
	}
}
