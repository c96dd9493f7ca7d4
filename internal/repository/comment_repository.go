package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"storyloom/internal/errs"
	"storyloom/internal/models"
)

const commentSelect = `
	SELECT c.comment_id, c.post_id, c.user_id, c.content, c.created_at, c.updated_at,
		u.username AS user_username, u.avatar AS user_avatar,
		ARRAY(SELECT cl.user_id::text FROM comment_likes cl WHERE cl.comment_id = c.comment_id ORDER BY cl.user_id) AS likes
	FROM comments c
	JOIN users u ON u.user_id = c.user_id
`

type commentRow struct {
	models.Comment
	UserUsername string `db:"user_username"`
	UserAvatar   string `db:"user_avatar"`
}

func (row *commentRow) toComment() models.Comment {
	comment := row.Comment
	comment.User = &models.UserSummary{
		UserID:   comment.UserID,
		Username: row.UserUsername,
		Avatar:   row.UserAvatar,
	}
	if comment.Likes == nil {
		comment.Likes = pq.StringArray{}
	}
	return comment
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	comment.CommentID = uuid.New().String()
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	query := `
		INSERT INTO comments (comment_id, post_id, user_id, content, created_at, updated_at)
		VALUES (:comment_id, :post_id, :user_id, :content, :created_at, :updated_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, postID, commentID string) (*models.Comment, error) {
	if !validID(postID) || !validID(commentID) {
		return nil, errs.NewNotFound(errs.MsgCommentMissing)
	}

	var row commentRow
	query := commentSelect + ` WHERE c.post_id = $1 AND c.comment_id = $2`

	if err := r.db.GetContext(ctx, &row, query, postID, commentID); err != nil {
		return nil, notFoundIfNoRows(err, errs.MsgCommentMissing, "get comment")
	}

	comment := row.toComment()
	return &comment, nil
}

// ListByPost returns comments in insertion order.
func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	var rows []commentRow
	query := commentSelect + ` WHERE c.post_id = $1 ORDER BY c.created_at, c.comment_id`

	if err := r.db.SelectContext(ctx, &rows, query, postID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]models.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, rows[i].toComment())
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, postID, commentID string) error {
	if !validID(postID) || !validID(commentID) {
		return errs.NewNotFound(errs.MsgCommentMissing)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1 AND comment_id = $2`, postID, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	return checkAffected(result, errs.MsgCommentMissing)
}
