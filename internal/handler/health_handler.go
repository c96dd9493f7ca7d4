package handlers

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"storyloom/internal/respond"
)

const APIVersion = "1.0.0"

type BannerResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
	Timestamp time.Time         `json:"timestamp"`
}

func (h *Handlers) APIRoot(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, BannerResponse{
		Status:  respond.StatusSuccess,
		Message: "StoryLoom API is running",
		Version: APIVersion,
		Endpoints: map[string]string{
			"auth":    "/api/auth",
			"posts":   "/api/posts",
			"users":   "/api/users",
			"uploads": "/api/uploads",
			"health":  "/api/health",
		},
		Timestamp: time.Now().UTC(),
	})
}

// Health pings the database and reports 503 when it is unreachable.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status, err := h.HealthService.Check(r.Context())
	if err != nil {
		h.logger(r).Warn("Health check failed", zap.Error(err))
		respond.JSON(w, http.StatusServiceUnavailable, respond.Envelope{
			Status:  respond.StatusError,
			Message: "Database unavailable",
			Data:    status,
		})
		return
	}

	respond.Message(w, http.StatusOK, "StoryLoom API is running", status)
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Fail(w, http.StatusNotFound, fmt.Sprintf("Route %s not found", r.URL.RequestURI()))
}
