package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"storyloom/internal/errs"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the body shape of every API response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes body as is, for the few responses that are not enveloped.
func JSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSON(w http.ResponseWriter, statusCode int, body Envelope) {
	JSON(w, statusCode, body)
}

// Success writes data under the "data" key.
func Success(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, Envelope{Status: StatusSuccess, Data: data})
}

func Message(w http.ResponseWriter, statusCode int, message string, data any) {
	writeJSON(w, statusCode, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

func Fail(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, Envelope{Status: StatusError, Message: message})
}

// Error translates err into the envelope. Internal causes are logged, not returned.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	e := errs.As(err)
	if e.Kind == errs.Internal && log != nil {
		log.Error("Request failed", zap.Error(err))
	}
	Fail(w, e.HTTPStatus(), e.Message)
}
