package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"storyloom/internal/errs"
	"storyloom/internal/logger"
	"storyloom/internal/models"
	"storyloom/internal/respond"
	"storyloom/internal/service"
)

const MsgInvalidBody = "Invalid request body"

func (h *Handlers) logger(r *http.Request) *zap.Logger {
	return logger.FromContextOr(r.Context(), h.Log)
}

// writeErr is the single exit for failed requests.
func (h *Handlers) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	respond.Error(w, h.logger(r), err)
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched
// so that validation reports the missing fields.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.Wrap(errs.Validation, "Request body too large", err)
		}
		return errs.Wrap(errs.Validation, MsgInvalidBody, err)
	}
	return nil
}

type normalizer interface {
	Normalize()
}

// bind decodes, normalises and validates a request struct.
func (h *Handlers) bind(r *http.Request, dst any) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return h.check(dst)
}

func (h *Handlers) check(dst any) error {
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	if err := h.Validate.Struct(dst); err != nil {
		return service.ValidationError(err)
	}
	return nil
}

// pageFromQuery reads page and limit, ignoring values that do not parse.
func pageFromQuery(r *http.Request) models.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return models.NewPage(page, limit)
}
