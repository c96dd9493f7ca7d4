package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storyloom/internal/config"
	"storyloom/internal/middleware"
	"storyloom/internal/models"
	"storyloom/internal/service"
	"storyloom/internal/storage"
)

type Handlers struct {
	UserService   service.UserService
	AuthService   service.AuthService
	PostService   service.PostService
	HealthService service.HealthService
	Storage       storage.Storage
	Cfg           *config.Config
	Validate      *validator.Validate
	Log           *zap.Logger
}

func NewHandlers(services *service.Service, store storage.Storage, cfg *config.Config, log *zap.Logger) *Handlers {
	return &Handlers{
		UserService:   services.User,
		AuthService:   services.Auth,
		PostService:   services.Post,
		HealthService: services.Health,
		Storage:       store,
		Cfg:           cfg,
		Validate:      service.NewValidator(),
		Log:           log,
	}
}

// currentUser is the authenticated caller, nil on public routes.
func currentUser(r *http.Request) *models.User {
	return middleware.UserFromContext(r.Context())
}
