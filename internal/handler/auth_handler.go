package handlers

import (
	"net/http"

	"microblogTTS/internal/apperror"
	"microblogTTS/internal/models"
	"microblogTTS/internal/service"
)

type AuthResponse struct {
	Success bool              `json:"success"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

type ProfileResponse struct {
	Success bool              `json:"success"`
	User    models.PublicUser `json:"user"`
}

type ExistsResponse struct {
	Success bool `json:"success"`
	Exists  bool `json:"exists"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Success: true, Token: result.Token, User: result.User})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Token: result.Token, User: result.User})
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		h.fail(w, r, apperror.ErrMissingToken)
		return
	}

	user, err := h.AuthService.GetProfile(r.Context(), identity)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Success: true, User: *user})
}

func (h *Handlers) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	exists, err := h.AuthService.CheckEmailExists(r.Context(), req.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ExistsResponse{Success: true, Exists: exists})
}

func (h *Handlers) CheckPseudo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pseudo string `json:"pseudo"`
	}
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	exists, err := h.AuthService.CheckPseudoExists(r.Context(), req.Pseudo)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ExistsResponse{Success: true, Exists: exists})
}
