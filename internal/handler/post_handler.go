package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"storyloom/internal/models"
	"storyloom/internal/respond"
	"storyloom/internal/service"
)

type PostResponse struct {
	Post *models.Post `json:"post"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

type CommentResponse struct {
	Comment *models.Comment `json:"comment"`
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.PostFilter{
		Category: strings.TrimSpace(q.Get("category")),
		AuthorID: strings.TrimSpace(q.Get("author")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if user := currentUser(r); user != nil {
		filter.ViewerID = user.UserID
	}

	list, err := h.PostService.ListPosts(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Success(w, http.StatusOK, list)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req service.CreatePostRequest

	if isMultipart(r) {
		if err := h.parseMultipart(w, r); err != nil {
			h.writeErr(w, r, err)
			return
		}

		img, cleanup, err := imageFromForm(r)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		defer cleanup()

		req = service.CreatePostRequest{
			Title:    formString(r, "title"),
			Content:  formString(r, "content"),
			Summary:  formString(r, "summary"),
			Category: formString(r, "category"),
			Tags:     formString(r, "tags"),
			Status:   formString(r, "status"),
			Image:    img,
		}
		if err := h.check(&req); err != nil {
			h.writeErr(w, r, err)
			return
		}
	} else if err := h.bind(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	post, err := h.PostService.CreatePost(r.Context(), currentUser(r), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Message(w, http.StatusCreated, "Post created successfully", PostResponse{Post: post})
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.GetPost(r.Context(), mux.Vars(r)["id"], currentUser(r))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Success(w, http.StatusOK, PostResponse{Post: post})
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req service.UpdatePostRequest

	if isMultipart(r) {
		if err := h.parseMultipart(w, r); err != nil {
			h.writeErr(w, r, err)
			return
		}

		img, cleanup, err := imageFromForm(r)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		defer cleanup()

		req = service.UpdatePostRequest{
			Title:    formValue(r, "title"),
			Content:  formValue(r, "content"),
			Summary:  formValue(r, "summary"),
			Category: formValue(r, "category"),
			Tags:     formValue(r, "tags"),
			Status:   formValue(r, "status"),
			Image:    img,
		}
		if err := h.check(&req); err != nil {
			h.writeErr(w, r, err)
			return
		}
	} else if err := h.bind(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	post, err := h.PostService.UpdatePost(r.Context(), currentUser(r), mux.Vars(r)["id"], req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Message(w, http.StatusOK, "Post updated successfully", PostResponse{Post: post})
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.PostService.DeletePost(r.Context(), currentUser(r), mux.Vars(r)["id"]); err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Message(w, http.StatusOK, "Post deleted successfully", nil)
}

func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	res, err := h.PostService.ToggleLike(r.Context(), currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Message(w, http.StatusOK, "Like toggled successfully", res)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	comment, err := h.PostService.AddComment(r.Context(), currentUser(r), mux.Vars(r)["id"], req.Content)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Message(w, http.StatusCreated, "Comment added successfully", CommentResponse{Comment: comment})
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.PostService.RemoveComment(r.Context(), currentUser(r), vars["id"], vars["commentId"]); err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Message(w, http.StatusOK, "Comment removed successfully", nil)
}
