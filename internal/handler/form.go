package handlers

import (
	"errors"
	"mime"
	"net/http"

	"storyloom/internal/errs"
	"storyloom/internal/service"
	"storyloom/internal/storage"
)

const (
	imageField = "image"

	// room for the text fields that travel with the file
	formOverhead    = 1 << 20
	multipartMemory = 10 << 20
)

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// parseMultipart caps the body before parsing so oversized uploads are
// rejected without being read in full.
func (h *Handlers) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize+formOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return storage.TooLargeError(h.Cfg.MaxUploadSize)
		}
		return errs.Wrap(errs.Validation, MsgInvalidBody, err)
	}
	return nil
}

// formValue returns nil when the field was not sent at all.
func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	vals, ok := r.MultipartForm.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

func formString(r *http.Request, key string) string {
	if v := formValue(r, key); v != nil {
		return *v
	}
	return ""
}

// imageFromForm returns a nil upload when no file was attached. The caller
// must run the returned cleanup.
func imageFromForm(r *http.Request) (*service.ImageUpload, func(), error) {
	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, errs.Wrap(errs.Validation, MsgInvalidBody, err)
	}

	upload := &service.ImageUpload{
		Field:    imageField,
		Filename: header.Filename,
		Size:     header.Size,
		File:     file,
	}
	return upload, func() { _ = file.Close() }, nil
}
