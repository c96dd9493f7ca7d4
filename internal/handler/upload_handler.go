package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"storyloom/internal/errs"
	"storyloom/internal/storage"
)

// ServeUpload streams a stored image. Names are checked before they reach
// the storage backend.
func (h *Handlers) ServeUpload(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]
	if !storage.ValidFilename(name) {
		h.writeErr(w, r, errs.NewValidation("Invalid filename"))
		return
	}

	contentType, ok := storage.ContentTypeForName(name)
	if !ok {
		h.writeErr(w, r, errs.NewValidation("Unsupported image format"))
		return
	}

	file, err := h.Storage.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeErr(w, r, errs.NewNotFound("Image not found"))
			return
		}
		h.writeErr(w, r, err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.Header().Set("Cross-Origin-Resource-Policy", "cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, file); err != nil {
		h.logger(r).Warn("Streaming upload failed", zap.String("filename", name), zap.Error(err))
	}
}
