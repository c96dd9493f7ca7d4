package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"storyloom/internal/models"
	"storyloom/internal/respond"
	"storyloom/internal/service"
)

type UserResponse struct {
	User *models.User `json:"user"`
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := h.bind(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	res, err := h.AuthService.Signup(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Message(w, http.StatusCreated, "User registered successfully", res)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := h.bind(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	res, err := h.AuthService.Login(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Message(w, http.StatusOK, "Login successful", res)
}

func (h *Handlers) GetMe(w http.ResponseWriter, r *http.Request) {
	respond.Success(w, http.StatusOK, UserResponse{User: currentUser(r)})
}

// Logout only acknowledges; tokens are dropped by the client.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	respond.Message(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req service.ForgotPasswordRequest
	if err := h.bind(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	if err := h.AuthService.ForgotPassword(r.Context(), req.Email); err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Message(w, http.StatusOK, "Password reset email sent", nil)
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req service.ResetPasswordRequest
	if err := h.bind(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	res, err := h.AuthService.ResetPassword(r.Context(), mux.Vars(r)["token"], req.Password)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	respond.Message(w, http.StatusOK, "Password reset successful", res)
}
