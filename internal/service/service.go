package service

import (
	"io"

	"go.uber.org/zap"

	"storyloom/internal/config"
	"storyloom/internal/mailer"
	"storyloom/internal/models"
	"storyloom/internal/repository"
	"storyloom/internal/storage"
)

type Service struct {
	User   UserService
	Post   PostService
	Auth   AuthService
	Health HealthService
}

func NewService(rep *repository.Repository, cfg *config.Config, store storage.Storage, mail mailer.Mailer, db Pinger, log *zap.Logger) *Service {
	uploads := newUploader(store, cfg.MaxUploadSize, log)
	return &Service{
		User:   NewUserService(rep.User, rep.Post, uploads),
		Post:   NewPostService(rep.Post, rep.Comment, uploads),
		Auth:   NewAuthService(rep.User, mail, cfg, log),
		Health: NewHealthService(db, rep.Schema),
	}
}

// ImageUpload is a file taken from a multipart form.
type ImageUpload struct {
	Field    string
	Filename string
	Size     int64
	File     io.ReadSeeker
}

type PostList struct {
	Posts      []*models.Post    `json:"posts"`
	Pagination models.Pagination `json:"pagination"`
}
