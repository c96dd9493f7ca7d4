package handlers

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storyloom/internal/errs"
	"storyloom/internal/models"
	"storyloom/internal/service"
)

func TestGetPosts(t *testing.T) {
	t.Run("query parameters become filter and page", func(t *testing.T) {
		f := newFixture(t)
		filter := models.PostFilter{Category: "Travel", AuthorID: "u-9", Search: "rust lang"}
		f.posts.On("ListPosts", mock.Anything, filter, models.Page{Number: 2, Limit: 100}).
			Return(&service.PostList{Posts: []*models.Post{}, Pagination: models.Pagination{CurrentPage: 2}}, nil)

		rr := f.do(request{method: http.MethodGet, path: "/api/posts?page=2&limit=500&category=Travel&author=u-9&search=rust+lang"})

		require.Equal(t, http.StatusOK, rr.Code)
		var list struct {
			Posts      []any             `json:"posts"`
			Pagination models.Pagination `json:"pagination"`
		}
		decodeData(t, decode(t, rr), &list)
		assert.NotNil(t, list.Posts)
		assert.Equal(t, 2, list.Pagination.CurrentPage)
	})

	t.Run("garbage paging falls back to defaults", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("ListPosts", mock.Anything, models.PostFilter{}, models.Page{Number: 1, Limit: 10}).
			Return(&service.PostList{Posts: []*models.Post{}}, nil)

		rr := f.do(request{method: http.MethodGet, path: "/api/posts?page=abc&limit=-4"})

		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("authenticated viewer", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("ListPosts", mock.Anything, models.PostFilter{ViewerID: "u-alice"}, models.Page{Number: 1, Limit: 10}).
			Return(&service.PostList{Posts: []*models.Post{}}, nil)

		rr := f.do(request{method: http.MethodGet, path: "/api/posts", token: aliceToken})

		require.Equal(t, http.StatusOK, rr.Code)
		f.posts.AssertExpectations(t)
	})

	t.Run("bad token is anonymous", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("ListPosts", mock.Anything, models.PostFilter{}, mock.Anything).
			Return(&service.PostList{Posts: []*models.Post{}}, nil)

		rr := f.do(request{method: http.MethodGet, path: "/api/posts", token: "forged"})

		require.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestCreatePost(t *testing.T) {
	t.Run("requires auth", func(t *testing.T) {
		f := newFixture(t)

		rr := f.do(request{method: http.MethodPost, path: "/api/posts", body: jsonBody(t, map[string]string{"title": "t"})})

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("json body", func(t *testing.T) {
		f := newFixture(t)
		want := service.CreatePostRequest{Title: "Hello", Content: "Body", Summary: "Sum", Category: "Science", Tags: "a,b"}
		f.posts.On("CreatePost", mock.Anything, alice, want).Return(&models.Post{PostID: "p1", Title: "Hello"}, nil)

		rr := f.do(request{
			method: http.MethodPost,
			path:   "/api/posts",
			token:  aliceToken,
			body:   jsonBody(t, map[string]string{"title": " Hello ", "content": "Body", "summary": "Sum", "category": "Science", "tags": "a,b"}),
		})

		require.Equal(t, http.StatusCreated, rr.Code)
		env := decode(t, rr)
		assert.Equal(t, "Post created successfully", env.Message)
		var res struct {
			Post struct {
				ID string `json:"id"`
			} `json:"post"`
		}
		decodeData(t, env, &res)
		assert.Equal(t, "p1", res.Post.ID)
	})

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{name: "missing title", body: map[string]string{"content": "c", "summary": "s"}, want: "Title is required"},
		{name: "missing summary", body: map[string]string{"title": "t", "content": "c"}, want: "Summary is required"},
		{name: "unknown category", body: map[string]string{"title": "t", "content": "c", "summary": "s", "category": "Cooking"}, want: "Category must be one of: Technology, Travel, Health, Education, Economy, Music, Science, Nature, Lifestyle, Other"},
		{name: "unknown status", body: map[string]string{"title": "t", "content": "c", "summary": "s", "status": "hidden"}, want: "Status must be one of: draft, published, archived"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			rr := f.do(request{method: http.MethodPost, path: "/api/posts", token: aliceToken, body: jsonBody(t, tt.body)})

			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.want, decode(t, rr).Message)
		})
	}

	t.Run("multipart with image", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("CreatePost", mock.Anything, alice, mock.MatchedBy(func(req service.CreatePostRequest) bool {
			if req.Image == nil || req.Title != "Pic" || req.Tags != "x, y" {
				return false
			}
			if _, err := req.Image.File.Seek(0, io.SeekStart); err != nil {
				return false
			}
			data, err := io.ReadAll(req.Image.File)
			return err == nil && bytes.Equal(data, pngBytes) &&
				req.Image.Filename == "cover.png" && req.Image.Field == "image" &&
				req.Image.Size == int64(len(pngBytes))
		})).Return(&models.Post{PostID: "p1"}, nil)

		body, ct := multipartBody(t, map[string]string{"title": "Pic", "content": "c", "summary": "s", "tags": "x, y"}, "cover.png", pngBytes)
		rr := f.do(request{method: http.MethodPost, path: "/api/posts", token: aliceToken, body: body, contentType: ct})

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	})

	t.Run("multipart body over the cap", func(t *testing.T) {
		f := newFixture(t)
		f.handlers.Cfg.MaxUploadSize = 1 << 10

		body, ct := multipartBody(t, map[string]string{"title": "t", "content": "c", "summary": "s"}, "big.png", make([]byte, 2<<20))
		rr := f.do(request{method: http.MethodPost, path: "/api/posts", token: aliceToken, body: body, contentType: ct})

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "File too large. Maximum size is 1.0 KiB", decode(t, rr).Message)
		f.posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetPost(t *testing.T) {
	f := newFixture(t)
	liked := true
	f.posts.On("GetPost", mock.Anything, "p1", alice).Return(&models.Post{PostID: "p1", IsLiked: &liked}, nil)
	f.posts.On("GetPost", mock.Anything, "p1", (*models.User)(nil)).Return(&models.Post{PostID: "p1"}, nil)
	f.posts.On("GetPost", mock.Anything, "missing", (*models.User)(nil)).Return(nil, errs.NewNotFound(errs.MsgPostNotFound))

	rr := f.do(request{method: http.MethodGet, path: "/api/posts/p1", token: aliceToken})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"isLiked":true`)

	rr = f.do(request{method: http.MethodGet, path: "/api/posts/p1"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "isLiked")

	rr = f.do(request{method: http.MethodGet, path: "/api/posts/missing"})
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Post not found", decode(t, rr).Message)
}

func TestUpdatePost(t *testing.T) {
	t.Run("json sets only sent fields", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("UpdatePost", mock.Anything, alice, "p1", mock.MatchedBy(func(req service.UpdatePostRequest) bool {
			return req.Title != nil && *req.Title == "New" && req.Content == nil && req.Summary == nil && req.Image == nil
		})).Return(&models.Post{PostID: "p1", Title: "New"}, nil)

		rr := f.do(request{method: http.MethodPut, path: "/api/posts/p1", token: aliceToken, body: jsonBody(t, map[string]string{"title": "New"})})

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Post updated successfully", decode(t, rr).Message)
	})

	t.Run("multipart sets only sent fields", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("UpdatePost", mock.Anything, alice, "p1", mock.MatchedBy(func(req service.UpdatePostRequest) bool {
			return req.Status != nil && *req.Status == "draft" && req.Title == nil && req.Image == nil
		})).Return(&models.Post{PostID: "p1"}, nil)

		body, ct := multipartBody(t, map[string]string{"status": "draft"}, "", nil)
		rr := f.do(request{method: http.MethodPut, path: "/api/posts/p1", token: aliceToken, body: body, contentType: ct})

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	})

	t.Run("empty title is rejected", func(t *testing.T) {
		f := newFixture(t)

		rr := f.do(request{method: http.MethodPut, path: "/api/posts/p1", token: aliceToken, body: jsonBody(t, map[string]string{"title": "  "})})

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Title cannot be empty", decode(t, rr).Message)
	})

	t.Run("empty category or status is rejected", func(t *testing.T) {
		f := newFixture(t)

		rr := f.do(request{method: http.MethodPut, path: "/api/posts/p1", token: aliceToken, body: jsonBody(t, map[string]string{"category": ""})})
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decode(t, rr).Message, "Category must be one of")

		rr = f.do(request{method: http.MethodPut, path: "/api/posts/p1", token: aliceToken, body: jsonBody(t, map[string]string{"status": " "})})
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Status must be one of: draft, published, archived", decode(t, rr).Message)

		f.posts.AssertNotCalled(t, "UpdatePost", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("UpdatePost", mock.Anything, alice, "p1", mock.Anything).
			Return(nil, errs.NewForbidden("Not authorized to update this post"))

		rr := f.do(request{method: http.MethodPut, path: "/api/posts/p1", token: aliceToken, body: jsonBody(t, map[string]string{"title": "x"})})

		require.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "Not authorized to update this post", decode(t, rr).Message)
	})
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	f.posts.On("DeletePost", mock.Anything, admin, "p1").Return(nil)

	rr := f.do(request{method: http.MethodDelete, path: "/api/posts/p1", token: adminToken})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Post deleted successfully", decode(t, rr).Message)
}

func TestToggleLike(t *testing.T) {
	f := newFixture(t)
	f.posts.On("ToggleLike", mock.Anything, alice, "p1").Return(&service.LikeResult{Likes: 4, IsLiked: true}, nil)

	rr := f.do(request{method: http.MethodPut, path: "/api/posts/p1/like", token: aliceToken})

	require.Equal(t, http.StatusOK, rr.Code)
	var res service.LikeResult
	decodeData(t, decode(t, rr), &res)
	assert.Equal(t, service.LikeResult{Likes: 4, IsLiked: true}, res)
}

func TestComments(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("AddComment", mock.Anything, alice, "p1", "Nice post").
			Return(&models.Comment{CommentID: "c1", Content: "Nice post"}, nil)

		rr := f.do(request{method: http.MethodPost, path: "/api/posts/p1/comments", token: aliceToken, body: jsonBody(t, map[string]string{"content": "Nice post"})})

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "Comment added successfully", decode(t, rr).Message)
	})

	t.Run("add without content", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("AddComment", mock.Anything, alice, "p1", "").Return(nil, errs.NewValidation("Comment content is required"))

		rr := f.do(request{method: http.MethodPost, path: "/api/posts/p1/comments", token: aliceToken, body: jsonBody(t, map[string]string{})})

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Comment content is required", decode(t, rr).Message)
	})

	t.Run("remove", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("RemoveComment", mock.Anything, alice, "p1", "c1").Return(nil)
		f.posts.On("RemoveComment", mock.Anything, alice, "p1", "c2").Return(errs.NewForbidden("Not authorized to delete this comment"))

		rr := f.do(request{method: http.MethodDelete, path: "/api/posts/p1/comments/c1", token: aliceToken})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Comment removed successfully", decode(t, rr).Message)

		rr = f.do(request{method: http.MethodDelete, path: "/api/posts/p1/comments/c2", token: aliceToken})
		require.Equal(t, http.StatusForbidden, rr.Code)
	})
}
