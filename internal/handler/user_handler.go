package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"storyloom/internal/models"
	"storyloom/internal/respond"
	"storyloom/internal/service"
)

type StatsResponse struct {
	Stats *models.UserStats `json:"stats"`
}

// GetUsers is admin only.
func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.UserService.ListUsers(r.Context(), pageFromQuery(r))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Success(w, http.StatusOK, list)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Success(w, http.StatusOK, UserResponse{User: user})
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProfileRequest

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

		req = service.UpdateProfileRequest{
			Username: formValue(r, "username"),
			Bio:      formValue(r, "bio"),
			Avatar:   formValue(r, "avatar"),
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

	user, err := h.UserService.UpdateProfile(r.Context(), currentUser(r), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Message(w, http.StatusOK, "Profile updated successfully", UserResponse{User: user})
}

func (h *Handlers) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	list, err := h.UserService.ListUserPosts(r.Context(), currentUser(r), mux.Vars(r)["id"], pageFromQuery(r))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Success(w, http.StatusOK, list)
}

func (h *Handlers) GetLikedPosts(w http.ResponseWriter, r *http.Request) {
	list, err := h.UserService.ListLikedPosts(r.Context(), currentUser(r), mux.Vars(r)["id"], pageFromQuery(r))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Success(w, http.StatusOK, list)
}

func (h *Handlers) GetUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.UserService.GetStats(r.Context(), currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Success(w, http.StatusOK, StatsResponse{Stats: stats})
}

// DeleteUser is admin only and removes the user's posts with them.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Message(w, http.StatusOK, "User and associated posts deleted successfully", nil)
}
