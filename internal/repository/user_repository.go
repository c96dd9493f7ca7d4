package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"storyloom/internal/errs"
	"storyloom/internal/models"
)

// userColumns never includes password_hash or the reset token.
const userColumns = `u.user_id, u.username, u.email, u.avatar, u.bio, u.role, u.created_at, u.updated_at`

const postCountColumn = `(SELECT COUNT(*) FROM posts p WHERE p.author_id = u.user_id) AS post_count`

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.UserID = uuid.New().String()
	user.PasswordHash = string(hashedPassword)
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Avatar == "" {
		user.Avatar = models.DefaultAvatar
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (user_id, username, email, password_hash, avatar, bio, role, created_at, updated_at)
		VALUES (:user_id, :username, :email, :password_hash, :avatar, :bio, :role, :created_at, :updated_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if pqErr, ok := isUniqueViolation(err); ok {
			return userConflict(pqErr.Constraint)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func userConflict(constraint string) error {
	switch {
	case strings.Contains(constraint, "username"):
		return errs.NewConflict("Username already taken")
	case strings.Contains(constraint, "email"):
		return errs.NewConflict("User with this email already exists")
	}
	return errs.NewConflict("User already exists")
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	if !validID(userID) {
		return nil, errs.NewNotFound(errs.MsgUserNotFound)
	}

	var user models.User
	query := `SELECT ` + userColumns + `, ` + postCountColumn + ` FROM users u WHERE u.user_id = $1`

	if err := r.db.GetContext(ctx, &user, query, userID); err != nil {
		return nil, notFoundIfNoRows(err, errs.MsgUserNotFound, "get user")
	}

	return &user, nil
}

// GetUserByEmail loads the stored password hash as well, for credential checks.
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + `, u.password_hash FROM users u WHERE u.email = $1`

	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(strings.TrimSpace(email))); err != nil {
		return nil, notFoundIfNoRows(err, errs.MsgUserNotFound, "get user by email")
	}

	return &user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.username = $1`

	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, notFoundIfNoRows(err, errs.MsgUserNotFound, "get user by username")
	}

	return &user, nil
}

func (r *userRepository) GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	var user models.User
	query := `
		SELECT ` + userColumns + ` FROM users u
		WHERE u.reset_password_token = $1 AND u.reset_password_expire > $2
	`

	if err := r.db.GetContext(ctx, &user, query, tokenHash, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NewValidation("Invalid or expired reset token")
		}
		return nil, fmt.Errorf("get user by reset token: %w", err)
	}

	return &user, nil
}

func (r *userRepository) ListUsers(ctx context.Context, page models.Page) ([]*models.User, int, error) {
	query, args, err := psql.
		Select(userColumns, postCountColumn).
		From("users u").
		OrderBy("u.created_at DESC", "u.user_id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build user list query: %w", err)
	}

	users := []*models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = :username, bio = :bio, avatar = :avatar, updated_at = :updated_at
		WHERE user_id = :user_id
	`

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if pqErr, ok := isUniqueViolation(err); ok {
			return userConflict(pqErr.Constraint)
		}
		return fmt.Errorf("update user: %w", err)
	}

	return checkAffected(result, errs.MsgUserNotFound)
}

// UpdatePassword stores a new hash and clears any pending reset token.
func (r *userRepository) UpdatePassword(ctx context.Context, userID, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	query := `
		UPDATE users
		SET password_hash = $1, reset_password_token = NULL, reset_password_expire = NULL, updated_at = $2
		WHERE user_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, string(hashedPassword), time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return checkAffected(result, errs.MsgUserNotFound)
}

func (r *userRepository) SetResetToken(ctx context.Context, userID string, tokenHash sql.NullString, expire sql.NullTime) error {
	query := `
		UPDATE users
		SET reset_password_token = $1, reset_password_expire = $2
		WHERE user_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, tokenHash, expire, userID)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	return checkAffected(result, errs.MsgUserNotFound)
}

// DeleteUser removes the user's posts and then the user in one transaction.
// Likes and comments the user left on other posts go with the user row.
func (r *userRepository) DeleteUser(ctx context.Context, userID string) error {
	if !validID(userID) {
		return errs.NewNotFound(errs.MsgUserNotFound)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE author_id = $1`, userID); err != nil {
		return fmt.Errorf("delete user posts: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := checkAffected(result, errs.MsgUserNotFound); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user delete: %w", err)
	}
	return nil
}

func (r *userRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.New(errs.Unauthenticated, "Invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errs.New(errs.Unauthenticated, "Invalid credentials")
	}

	user.PasswordHash = ""
	return user, nil
}

func (r *userRepository) Stats(ctx context.Context, userID string) (*models.UserStats, error) {
	if !validID(userID) {
		return nil, errs.NewNotFound(errs.MsgUserNotFound)
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM posts WHERE author_id = $1) AS posts_count,
			(SELECT COUNT(*) FROM post_likes pl JOIN posts p ON p.post_id = pl.post_id WHERE p.author_id = $1) AS total_likes,
			(SELECT COUNT(*) FROM comments c JOIN posts p ON p.post_id = c.post_id WHERE p.author_id = $1) AS total_comments,
			(SELECT COALESCE(SUM(views), 0) FROM posts WHERE author_id = $1) AS total_views,
			(SELECT COUNT(*) FROM post_likes WHERE user_id = $1) AS liked_posts_count
	`

	var stats models.UserStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	return &stats, nil
}
