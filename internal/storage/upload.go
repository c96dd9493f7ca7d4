package storage

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"storyloom/internal/errs"
)

var ErrInvalidFilename = errors.New("invalid filename")

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

const MsgOnlyImages = "Only image files are allowed!"

// ContentTypeForName maps an allowed image extension onto its content type.
func ContentTypeForName(name string) (string, bool) {
	ct, ok := imageTypes[strings.ToLower(filepath.Ext(name))]
	return ct, ok
}

// ValidFilename rejects names that could escape the uploads directory.
func ValidFilename(name string) bool {
	return name != "" &&
		!strings.Contains(name, "..") &&
		!strings.ContainsAny(name, `/\`)
}

// GenerateFilename builds "<field>-<unixmillis>-<random>.<ext>".
func GenerateFilename(field, original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s-%d-%d%s", field, now.UnixMilli(), rand.IntN(1e9), ext)
}

func TooLargeError(maxSize int64) *errs.Error {
	return errs.Newf(errs.Validation, "File too large. Maximum size is %s", humanize.IBytes(uint64(maxSize)))
}

// ValidateImage checks size, extension and sniffed content, then rewinds r.
// It returns the content type to store the file under.
func ValidateImage(r io.ReadSeeker, originalName string, size, maxSize int64) (string, error) {
	if size > maxSize {
		return "", TooLargeError(maxSize)
	}

	declared, ok := ContentTypeForName(originalName)
	if !ok {
		return "", errs.NewValidation(MsgOnlyImages)
	}

	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("sniff upload: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	// the extension decides how the file is served later, so the bytes must agree with it
	if !detected.Is(declared) {
		return "", errs.NewValidation(MsgOnlyImages)
	}
	return declared, nil
}
