package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"microblogTTS/internal/apperror"
	"microblogTTS/internal/models"
	"microblogTTS/internal/service"
)

type AudioResponse struct {
	Success bool         `json:"success"`
	Queued  bool         `json:"queued"`
	Data    *models.Post `json:"data"`
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", service.DefaultPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultPageLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.PostService.ListPublic(r.Context(), page, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeData(w, http.StatusOK, result)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	post, err := h.PostService.GetPost(r.Context(), viewer(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeData(w, http.StatusOK, post)
}

// GetMyPosts lists the caller's posts, private ones included.
func (h *Handlers) GetMyPosts(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		h.fail(w, r, apperror.ErrMissingToken)
		return
	}
	h.listUserPosts(w, r, identity.UserID)
}

func (h *Handlers) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.listUserPosts(w, r, userID)
}

func (h *Handlers) listUserPosts(w http.ResponseWriter, r *http.Request, userID int64) {
	posts, err := h.PostService.ListUserPosts(r.Context(), viewer(r.Context()), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeData(w, http.StatusOK, posts)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		h.fail(w, r, apperror.ErrMissingToken)
		return
	}

	var req models.CreatePostRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.check(req); err != nil {
		h.fail(w, r, err)
		return
	}

	post, err := h.PostService.CreatePost(r.Context(), identity, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, post)
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		h.fail(w, r, apperror.ErrMissingToken)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req models.UpdatePostRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.check(req); err != nil {
		h.fail(w, r, err)
		return
	}

	post, err := h.PostService.UpdatePost(r.Context(), identity, id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeData(w, http.StatusOK, post)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		h.fail(w, r, apperror.ErrMissingToken)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.PostService.DeletePost(r.Context(), identity, id); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Post deleted"})
}

func (h *Handlers) SearchPosts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", service.DefaultSearchLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	posts, err := h.PostService.SearchPosts(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeData(w, http.StatusOK, posts)
}

// GenerateAudio answers 202 when generation was queued and 200 when the
// post already has audio.
func (h *Handlers) GenerateAudio(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		h.fail(w, r, apperror.ErrMissingToken)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	post, queued, err := h.PostService.RequestAudio(r.Context(), identity, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	status := http.StatusOK
	if queued {
		status = http.StatusAccepted
	}
	writeJSON(w, status, AudioResponse{Success: true, Queued: queued, Data: post})
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("invalid_parameters", name, "Invalid "+name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("invalid_parameters", name, "Invalid pagination parameters")
	}
	return v, nil
}
