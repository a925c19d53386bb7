package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-auth-api/internal/middleware"
	"go-auth-api/internal/model"
	"go-auth-api/internal/service"
	"go-auth-api/pkg/apierror"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1, 1, service.MaxPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	size, err := queryInt(r, "size", service.DefaultPageSize, 1, service.MaxPageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, meta, err := h.users.List(r.Context(), page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Users retrieved successfully", items, meta)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	user, err := h.users.Create(r.Context(), model.NewUser{
		Email:       req.Email,
		Username:    req.Username,
		FullName:    req.FullName,
		Password:    req.Password,
		IsActive:    active,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User created successfully", user, nil)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User retrieved successfully", user, nil)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Update(r.Context(), actor, id, model.UserPatch{FullName: req.FullName, IsActive: req.IsActive})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User updated successfully", user, nil)
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	writeSuccess(w, http.StatusOK, "Current user profile retrieved", actor.Public(), nil)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	var req model.UpdateUserRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.UpdateMe(r.Context(), actor, model.UserPatch{FullName: req.FullName})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Profile updated successfully", user, nil)
}

func (h *UserHandler) actorAndTarget(w http.ResponseWriter, r *http.Request) (model.User, int64, bool) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return model.User{}, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, apierror.Validation("Request validation failed", map[string]string{"id": "must be a positive integer"}))
		return model.User{}, 0, false
	}

	return actor, id, true
}

// queryInt reads an optional integer parameter. hi <= 0 means unbounded.
func queryInt(r *http.Request, name string, fallback int, lo int, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierror.Validation("Request validation failed", map[string]string{name: "must be an integer"})
	}
	if value < lo {
		return 0, apierror.Validation("Request validation failed", map[string]string{name: "must be at least " + strconv.Itoa(lo)})
	}
	if hi > 0 && value > hi {
		return 0, apierror.Validation("Request validation failed", map[string]string{name: "must be at most " + strconv.Itoa(hi)})
	}
	return value, nil
}
