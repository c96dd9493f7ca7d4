package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"storyloom/internal/errs"
	"storyloom/internal/models"
)

var postColumns = []string{
	"p.post_id", "p.title", "p.content", "p.summary", "p.image", "p.category", "p.author_id",
	"p.status", "p.tags", "p.views", "p.featured", "p.read_time", "p.created_at", "p.updated_at",
	"u.username AS author_username", "u.avatar AS author_avatar", "u.bio AS author_bio",
	"(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.post_id) AS like_count",
	"(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.post_id) AS comment_count",
}

const searchPredicate = `to_tsvector('english', p.title || ' ' || p.summary || ' ' || p.content) @@ plainto_tsquery('english', ?)`

// postRow is a post joined with its author and viewer specific flags.
type postRow struct {
	models.Post
	AuthorUsername string       `db:"author_username"`
	AuthorAvatar   string       `db:"author_avatar"`
	AuthorBio      string       `db:"author_bio"`
	IsLiked        sql.NullBool `db:"is_liked"`
}

func (row *postRow) toPost() *models.Post {
	post := row.Post
	post.Author = &models.UserSummary{
		UserID:   post.AuthorID,
		Username: row.AuthorUsername,
		Avatar:   row.AuthorAvatar,
		Bio:      row.AuthorBio,
	}
	if row.IsLiked.Valid {
		liked := row.IsLiked.Bool
		post.IsLiked = &liked
	}
	if post.Tags == nil {
		post.Tags = pq.StringArray{}
	}
	return &post
}

type PostRepositoryImpl struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{db: db}
}

func selectPosts(viewerID string) sq.SelectBuilder {
	q := psql.Select(postColumns...).
		From("posts p").
		Join("users u ON u.user_id = p.author_id")
	if viewerID != "" {
		q = q.Column(sq.Expr(
			"EXISTS (SELECT 1 FROM post_likes vl WHERE vl.post_id = p.post_id AND vl.user_id = ?) AS is_liked",
			viewerID,
		))
	}
	return q
}

func applyPostFilter(q sq.SelectBuilder, filter models.PostFilter) sq.SelectBuilder {
	if !filter.IncludeAllStatuses {
		q = q.Where(sq.Eq{"p.status": models.StatusPublished})
	}
	if filter.Category != "" {
		q = q.Where(sq.Eq{"p.category": filter.Category})
	}
	if filter.AuthorID != "" {
		q = q.Where(sq.Eq{"p.author_id": filter.AuthorID})
	}
	if filter.Search != "" {
		q = q.Where(sq.Expr(searchPredicate, filter.Search))
	}
	if filter.LikedBy != "" {
		q = q.Where(sq.Expr(
			"EXISTS (SELECT 1 FROM post_likes lb WHERE lb.post_id = p.post_id AND lb.user_id = ?)",
			filter.LikedBy,
		))
	}
	return q
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}
	normalisePost(post)

	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	query := `
		INSERT INTO posts
		(post_id, title, content, summary, image, category, author_id, status, tags, views, featured, read_time, created_at, updated_at)
		VALUES
		(:post_id, :title, :content, :summary, :image, :category, :author_id, :status, :tags, :views, :featured, :read_time, :created_at, :updated_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	return nil
}

// normalisePost fills defaults and recomputes readTime from the content being saved.
func normalisePost(post *models.Post) {
	if post.Category == "" {
		post.Category = models.CategoryOther
	}
	if post.Status == "" {
		post.Status = models.StatusPublished
	}
	if post.Image == "" {
		post.Image = models.DefaultPostImage
	}
	if post.Tags == nil {
		post.Tags = pq.StringArray{}
	}
	post.ReadTime = models.ReadTime(post.Content)
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID, viewerID string) (*models.Post, error) {
	if !validID(postID) {
		return nil, errs.NewNotFound(errs.MsgPostNotFound)
	}

	query, args, err := selectPosts(viewerID).Where(sq.Eq{"p.post_id": postID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build post query: %w", err)
	}

	var row postRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, notFoundIfNoRows(err, errs.MsgPostNotFound, "get post")
	}

	return row.toPost(), nil
}

// List returns one page of posts, newest first, and the total number of matches.
func (r *PostRepositoryImpl) List(ctx context.Context, filter models.PostFilter, page models.Page) ([]*models.Post, int, error) {
	if (filter.AuthorID != "" && !validID(filter.AuthorID)) || (filter.LikedBy != "" && !validID(filter.LikedBy)) {
		return []*models.Post{}, 0, nil
	}

	query, args, err := applyPostFilter(selectPosts(filter.ViewerID), filter).
		OrderBy("p.created_at DESC", "p.post_id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build post list query: %w", err)
	}

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	countQuery, countArgs, err := applyPostFilter(psql.Select("COUNT(*)").From("posts p"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build post count query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	posts := make([]*models.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, rows[i].toPost())
	}

	return posts, total, nil
}

func (r *PostRepositoryImpl) Update(ctx context.Context, post *models.Post) error {
	normalisePost(post)
	post.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE posts SET
			title = :title,
			content = :content,
			summary = :summary,
			image = :image,
			category = :category,
			status = :status,
			tags = :tags,
			featured = :featured,
			read_time = :read_time,
			updated_at = :updated_at
		WHERE post_id = :post_id
	`

	result, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	return checkAffected(result, errs.MsgPostNotFound)
}

// Delete removes the post; likes and comments cascade.
func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string) error {
	if !validID(postID) {
		return errs.NewNotFound(errs.MsgPostNotFound)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE post_id = $1`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	return checkAffected(result, errs.MsgPostNotFound)
}

func (r *PostRepositoryImpl) IncrementViews(ctx context.Context, postID string) (int64, error) {
	if !validID(postID) {
		return 0, errs.NewNotFound(errs.MsgPostNotFound)
	}

	var views int64
	err := r.db.QueryRowxContext(ctx,
		`UPDATE posts SET views = views + 1 WHERE post_id = $1 RETURNING views`, postID,
	).Scan(&views)
	if err != nil {
		return 0, notFoundIfNoRows(err, errs.MsgPostNotFound, "increment views")
	}

	return views, nil
}

// ToggleLike flips userID's membership in the post's like set.
func (r *PostRepositoryImpl) ToggleLike(ctx context.Context, postID, userID string) (int, bool, error) {
	if !validID(postID) {
		return 0, false, errs.NewNotFound(errs.MsgPostNotFound)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM posts WHERE post_id = $1)`, postID); err != nil {
		return 0, false, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return 0, false, errs.NewNotFound(errs.MsgPostNotFound)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return 0, false, fmt.Errorf("remove like: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("remove like: %w", err)
	}

	liked := false
	if removed == 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, postID, userID,
		); err != nil {
			return 0, false, fmt.Errorf("add like: %w", err)
		}
		liked = true
	}

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID); err != nil {
		return 0, false, fmt.Errorf("count likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit like: %w", err)
	}

	return count, liked, nil
}

func (r *PostRepositoryImpl) GetLikers(ctx context.Context, postID string) ([]models.UserSummary, error) {
	query := `
		SELECT u.user_id, u.username, u.avatar
		FROM post_likes pl
		JOIN users u ON u.user_id = pl.user_id
		WHERE pl.post_id = $1
		ORDER BY pl.created_at, u.user_id
	`

	likers := []models.UserSummary{}
	if err := r.db.SelectContext(ctx, &likers, query, postID); err != nil {
		return nil, fmt.Errorf("get likers: %w", err)
	}

	return likers, nil
}
