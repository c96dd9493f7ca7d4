package models

import (
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"
)

const (
	DefaultAvatar    = "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop&crop=face"
	DefaultPostImage = "https://images.unsplash.com/photo-1488646953014-85cb44e25828?w=800&h=400&fit=crop"

	// WordsPerMinute is the reading speed used for readTime.
	WordsPerMinute = 200
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

type Category string

const (
	CategoryTechnology Category = "Technology"
	CategoryTravel     Category = "Travel"
	CategoryHealth     Category = "Health"
	CategoryEducation  Category = "Education"
	CategoryEconomy    Category = "Economy"
	CategoryMusic      Category = "Music"
	CategoryScience    Category = "Science"
	CategoryNature     Category = "Nature"
	CategoryLifestyle  Category = "Lifestyle"
	CategoryOther      Category = "Other"
)

var Categories = []Category{
	CategoryTechnology, CategoryTravel, CategoryHealth, CategoryEducation, CategoryEconomy,
	CategoryMusic, CategoryScience, CategoryNature, CategoryLifestyle, CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type User struct {
	UserID              string         `json:"id" db:"user_id"`
	Username            string         `json:"username" db:"username"`
	Email               string         `json:"email" db:"email"`
	PasswordHash        string         `json:"-" db:"password_hash"`
	Avatar              string         `json:"avatar" db:"avatar"`
	Bio                 string         `json:"bio" db:"bio"`
	Role                Role           `json:"role" db:"role"`
	ResetPasswordToken  sql.NullString `json:"-" db:"reset_password_token"`
	ResetPasswordExpire sql.NullTime   `json:"-" db:"reset_password_expire"`
	PostCount           *int           `json:"postCount,omitempty" db:"post_count"`
	CreatedAt           time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time      `json:"updatedAt" db:"updated_at"`
}

// Summary is the author projection embedded in posts and comments.
func (u *User) Summary() UserSummary {
	return UserSummary{
		UserID:   u.UserID,
		Username: u.Username,
		Avatar:   u.Avatar,
		Bio:      u.Bio,
	}
}

type UserSummary struct {
	UserID   string `json:"id" db:"user_id"`
	Username string `json:"username" db:"username"`
	Avatar   string `json:"avatar" db:"avatar"`
	Bio      string `json:"bio,omitempty" db:"bio"`
}

type UserStats struct {
	PostsCount      int   `json:"postsCount" db:"posts_count"`
	TotalLikes      int   `json:"totalLikes" db:"total_likes"`
	TotalComments   int   `json:"totalComments" db:"total_comments"`
	TotalViews      int64 `json:"totalViews" db:"total_views"`
	LikedPostsCount int   `json:"likedPostsCount" db:"liked_posts_count"`
}

type Post struct {
	PostID       string         `json:"id" db:"post_id"`
	Title        string         `json:"title" db:"title"`
	Content      string         `json:"content" db:"content"`
	Summary      string         `json:"summary" db:"summary"`
	Image        string         `json:"image" db:"image"`
	Category     Category       `json:"category" db:"category"`
	AuthorID     string         `json:"authorId" db:"author_id"`
	Author       *UserSummary   `json:"author,omitempty" db:"-"`
	Status       Status         `json:"status" db:"status"`
	Tags         pq.StringArray `json:"tags" db:"tags"`
	Views        int64          `json:"views" db:"views"`
	Featured     bool           `json:"featured" db:"featured"`
	ReadTime     int            `json:"readTime" db:"read_time"`
	LikeCount    int            `json:"likeCount" db:"like_count"`
	CommentCount int            `json:"commentCount" db:"comment_count"`
	IsLiked      *bool          `json:"isLiked,omitempty" db:"-"`
	Likes        []UserSummary  `json:"likes,omitempty" db:"-"`
	Comments     []Comment      `json:"comments,omitempty" db:"-"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" db:"updated_at"`
}

type Comment struct {
	CommentID string         `json:"id" db:"comment_id"`
	PostID    string         `json:"postId" db:"post_id"`
	UserID    string         `json:"-" db:"user_id"`
	User      *UserSummary   `json:"user,omitempty" db:"-"`
	Content   string         `json:"content" db:"content"`
	Likes     pq.StringArray `json:"likes" db:"likes"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

// ReadTime returns the minutes needed to read content, rounded up.
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// ParseTags splits a comma separated tag list, dropping empty entries.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
