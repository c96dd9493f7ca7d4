package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"storyloom/internal/errs"
	"storyloom/internal/models"
	"storyloom/internal/repository"
)

const maxCommentLength = 1000

type CreatePostRequest struct {
	Title    string       `json:"title" validate:"required,max=200"`
	Content  string       `json:"content" validate:"required"`
	Summary  string       `json:"summary" validate:"required,max=300"`
	Category string       `json:"category" validate:"omitempty,category"`
	Tags     string       `json:"tags"`
	Status   string       `json:"status" validate:"omitempty,oneof=draft published archived"`
	Image    *ImageUpload `json:"-" validate:"-"`
}

func (r *CreatePostRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Summary = strings.TrimSpace(r.Summary)
	r.Category = strings.TrimSpace(r.Category)
	r.Status = strings.TrimSpace(r.Status)
}

// UpdatePostRequest changes only the fields that are set.
type UpdatePostRequest struct {
	Title    *string      `json:"title" validate:"omitnil,min=1,max=200"`
	Content  *string      `json:"content" validate:"omitnil,min=1"`
	Summary  *string      `json:"summary" validate:"omitnil,min=1,max=300"`
	Category *string      `json:"category" validate:"omitnil,category"`
	Tags     *string      `json:"tags"`
	Status   *string      `json:"status" validate:"omitnil,oneof=draft published archived"`
	Image    *ImageUpload `json:"-" validate:"-"`
}

func (r *UpdatePostRequest) Normalize() {
	for _, field := range []*string{r.Title, r.Summary, r.Category, r.Status} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

type LikeResult struct {
	Likes   int  `json:"likes"`
	IsLiked bool `json:"isLiked"`
}

type PostService interface {
	ListPosts(ctx context.Context, filter models.PostFilter, page models.Page) (*PostList, error)
	CreatePost(ctx context.Context, actor *models.User, req CreatePostRequest) (*models.Post, error)
	GetPost(ctx context.Context, postID string, viewer *models.User) (*models.Post, error)
	UpdatePost(ctx context.Context, actor *models.User, postID string, req UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, actor *models.User, postID string) error
	ToggleLike(ctx context.Context, actor *models.User, postID string) (*LikeResult, error)
	AddComment(ctx context.Context, actor *models.User, postID, content string) (*models.Comment, error)
	RemoveComment(ctx context.Context, actor *models.User, postID, commentID string) error
}

type postService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	uploads     *uploader
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, uploads *uploader) PostService {
	return &postService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		uploads:     uploads,
	}
}

func viewerID(viewer *models.User) string {
	if viewer == nil {
		return ""
	}
	return viewer.UserID
}

func (p *postService) ListPosts(ctx context.Context, filter models.PostFilter, page models.Page) (*PostList, error) {
	posts, total, err := p.postRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	return &PostList{Posts: posts, Pagination: models.NewPagination(page, total)}, nil
}

func (p *postService) CreatePost(ctx context.Context, actor *models.User, req CreatePostRequest) (*models.Post, error) {
	post := &models.Post{
		Title:    req.Title,
		Content:  req.Content,
		Summary:  req.Summary,
		Category: models.Category(req.Category),
		Status:   models.Status(req.Status),
		Tags:     models.ParseTags(req.Tags),
		AuthorID: actor.UserID,
	}

	var stored string
	if req.Image != nil {
		url, name, err := p.uploads.save(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		post.Image, stored = url, name
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		p.uploads.discard(ctx, stored)
		return nil, err
	}

	author := actor.Summary()
	post.Author = &author
	return post, nil
}

// GetPost counts a view and returns the post with likers and comments populated.
func (p *postService) GetPost(ctx context.Context, postID string, viewer *models.User) (*models.Post, error) {
	if _, err := p.postRepo.IncrementViews(ctx, postID); err != nil {
		return nil, err
	}

	post, err := p.postRepo.GetByID(ctx, postID, viewerID(viewer))
	if err != nil {
		return nil, err
	}

	if post.Likes, err = p.postRepo.GetLikers(ctx, postID); err != nil {
		return nil, err
	}
	if post.Comments, err = p.commentRepo.ListByPost(ctx, postID); err != nil {
		return nil, err
	}

	return post, nil
}

func (p *postService) UpdatePost(ctx context.Context, actor *models.User, postID string, req UpdatePostRequest) (*models.Post, error) {
	post, err := p.postRepo.GetByID(ctx, postID, "")
	if err != nil {
		return nil, err
	}

	if !models.CanMutate(actor, post.AuthorID) {
		return nil, errs.NewForbidden("Not authorized to update this post")
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Summary != nil {
		post.Summary = *req.Summary
	}
	if req.Category != nil {
		post.Category = models.Category(*req.Category)
	}
	if req.Status != nil {
		post.Status = models.Status(*req.Status)
	}
	if req.Tags != nil {
		post.Tags = models.ParseTags(*req.Tags)
	}

	previousImage := post.Image
	var stored string
	if req.Image != nil {
		url, name, err := p.uploads.save(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		post.Image, stored = url, name
	}

	if err := p.postRepo.Update(ctx, post); err != nil {
		p.uploads.discard(ctx, stored)
		return nil, err
	}

	if stored != "" {
		p.uploads.discardURL(ctx, previousImage)
	}

	return p.postRepo.GetByID(ctx, postID, actor.UserID)
}

func (p *postService) DeletePost(ctx context.Context, actor *models.User, postID string) error {
	post, err := p.postRepo.GetByID(ctx, postID, "")
	if err != nil {
		return err
	}

	if !models.CanMutate(actor, post.AuthorID) {
		return errs.NewForbidden("Not authorized to delete this post")
	}

	if err := p.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	p.uploads.discardURL(ctx, post.Image)
	return nil
}

func (p *postService) ToggleLike(ctx context.Context, actor *models.User, postID string) (*LikeResult, error) {
	count, liked, err := p.postRepo.ToggleLike(ctx, postID, actor.UserID)
	if err != nil {
		return nil, err
	}

	return &LikeResult{Likes: count, IsLiked: liked}, nil
}

// AddComment appends a comment and returns it reloaded with its author's current profile.
func (p *postService) AddComment(ctx context.Context, actor *models.User, postID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.NewValidation("Comment content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, errs.NewValidation("Comment cannot be more than 1000 characters")
	}

	if _, err := p.postRepo.GetByID(ctx, postID, ""); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  actor.UserID,
		Content: content,
	}
	if err := p.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return p.commentRepo.GetByID(ctx, postID, comment.CommentID)
}

func (p *postService) RemoveComment(ctx context.Context, actor *models.User, postID, commentID string) error {
	post, err := p.postRepo.GetByID(ctx, postID, "")
	if err != nil {
		return err
	}

	comment, err := p.commentRepo.GetByID(ctx, postID, commentID)
	if err != nil {
		return err
	}

	if !models.CanRemoveComment(actor, comment.UserID, post.AuthorID) {
		return errs.NewForbidden("Not authorized to delete this comment")
	}

	return p.commentRepo.Delete(ctx, postID, commentID)
}
