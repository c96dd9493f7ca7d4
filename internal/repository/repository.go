package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"storyloom/internal/errs"
	"storyloom/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	ListUsers(ctx context.Context, page models.Page) ([]*models.User, int, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID, password string) error
	SetResetToken(ctx context.Context, userID string, tokenHash sql.NullString, expire sql.NullTime) error
	DeleteUser(ctx context.Context, userID string) error
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	Stats(ctx context.Context, userID string) (*models.UserStats, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID, viewerID string) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter, page models.Page) ([]*models.Post, int, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, postID string) error
	IncrementViews(ctx context.Context, postID string) (int64, error)
	ToggleLike(ctx context.Context, postID, userID string) (likeCount int, liked bool, err error)
	GetLikers(ctx context.Context, postID string) ([]models.UserSummary, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, postID, commentID string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	Delete(ctx context.Context, postID, commentID string) error
}

type SchemaRepository interface {
	CountTables(ctx context.Context) (int, error)
}

type Repository struct {
	User    UserRepository
	Post    PostRepository
	Comment CommentRepository
	Schema  SchemaRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:    NewUserRepository(db),
		Post:    NewPostRepository(db),
		Comment: NewCommentRepository(db),
		Schema:  NewSchemaRepository(db),
	}
}

// psql is the squirrel builder for PostgreSQL placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const uniqueViolation = "23505"

func isUniqueViolation(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr, true
	}
	return nil, false
}

// validID rejects ids that could never match a UUID column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// notFoundIfNoRows maps a missing row to NotFound and wraps anything else with op.
func notFoundIfNoRows(err error, message, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFound(message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func checkAffected(result sql.Result, message string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errs.NewNotFound(message)
	}
	return nil
}
