package service

import (
	"context"
	"strings"

	"storyloom/internal/errs"
	"storyloom/internal/models"
	"storyloom/internal/repository"
)

// UpdateProfileRequest applies set fields. An empty Avatar resets to the default.
type UpdateProfileRequest struct {
	Username *string      `json:"username" validate:"omitnil,min=3,max=30"`
	Bio      *string      `json:"bio" validate:"omitnil,max=500"`
	Avatar   *string      `json:"avatar"`
	Image    *ImageUpload `json:"-" validate:"-"`
}

func (r *UpdateProfileRequest) Normalize() {
	if r.Username != nil {
		*r.Username = strings.TrimSpace(*r.Username)
	}
}

type UserList struct {
	Users      []*models.User        `json:"users"`
	Pagination models.UserPagination `json:"pagination"`
}

type UserPostList struct {
	Posts      []*models.Post     `json:"posts"`
	Pagination models.Pagination  `json:"pagination"`
	User       models.UserSummary `json:"user"`
}

type UserService interface {
	ListUsers(ctx context.Context, page models.Page) (*UserList, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, actor *models.User, req UpdateProfileRequest) (*models.User, error)
	ListUserPosts(ctx context.Context, viewer *models.User, userID string, page models.Page) (*UserPostList, error)
	ListLikedPosts(ctx context.Context, actor *models.User, userID string, page models.Page) (*PostList, error)
	GetStats(ctx context.Context, actor *models.User, userID string) (*models.UserStats, error)
	DeleteUser(ctx context.Context, userID string) error
}

type userService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	uploads  *uploader
}

func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository, uploads *uploader) UserService {
	return &userService{
		userRepo: userRepo,
		postRepo: postRepo,
		uploads:  uploads,
	}
}

func (s *userService) ListUsers(ctx context.Context, page models.Page) (*UserList, error) {
	users, total, err := s.userRepo.ListUsers(ctx, page)
	if err != nil {
		return nil, err
	}

	return &UserList{Users: users, Pagination: models.NewUserPagination(page, total)}, nil
}

func (s *userService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, actor *models.User, req UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != "" && *req.Username != user.Username {
		_, err := s.userRepo.GetUserByUsername(ctx, *req.Username)
		switch {
		case err == nil:
			return nil, errs.NewConflict("Username already taken")
		case !errs.IsNotFound(err):
			return nil, err
		}
		user.Username = *req.Username
	}

	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	previousAvatar := user.Avatar
	var stored string
	switch {
	case req.Image != nil:
		url, name, err := s.uploads.save(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		user.Avatar, stored = url, name
	case req.Avatar != nil && *req.Avatar == "":
		user.Avatar = models.DefaultAvatar
	case req.Avatar != nil:
		user.Avatar = *req.Avatar
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		s.uploads.discard(ctx, stored)
		return nil, err
	}

	if user.Avatar != previousAvatar {
		s.uploads.discardURL(ctx, previousAvatar)
	}

	return user, nil
}

// ListUserPosts shows every status only to the profile owner.
func (s *userService) ListUserPosts(ctx context.Context, viewer *models.User, userID string, page models.Page) (*UserPostList, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	filter := models.PostFilter{
		AuthorID:           user.UserID,
		IncludeAllStatuses: viewer != nil && viewer.UserID == user.UserID,
		ViewerID:           viewerID(viewer),
	}

	posts, total, err := s.postRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	return &UserPostList{
		Posts:      posts,
		Pagination: models.NewPagination(page, total),
		User:       user.Summary(),
	}, nil
}

func (s *userService) ListLikedPosts(ctx context.Context, actor *models.User, userID string, page models.Page) (*PostList, error) {
	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	if !models.CanMutate(actor, userID) {
		return nil, errs.NewForbidden("Not authorized to view this user's liked posts")
	}

	filter := models.PostFilter{
		LikedBy:            userID,
		IncludeAllStatuses: true,
		ViewerID:           actor.UserID,
	}

	posts, total, err := s.postRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	return &PostList{Posts: posts, Pagination: models.NewPagination(page, total)}, nil
}

func (s *userService) GetStats(ctx context.Context, actor *models.User, userID string) (*models.UserStats, error) {
	if !models.CanMutate(actor, userID) {
		return nil, errs.NewForbidden("Not authorized to view this user's statistics")
	}

	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	return s.userRepo.Stats(ctx, userID)
}

func (s *userService) DeleteUser(ctx context.Context, userID string) error {
	return s.userRepo.DeleteUser(ctx, userID)
}
