package handler

import (
	"net/http"
	"strings"

	"go-auth-api/internal/middleware"
	"go-auth-api/internal/model"
	"go-auth-api/internal/service"
	"go-auth-api/pkg/apierror"
)

type authRecorder interface {
	RecordAuth(event string, err error)
}

type AuthHandler struct {
	auth     *service.AuthService
	recorder authRecorder
}

func NewAuthHandler(auth *service.AuthService, recorder authRecorder) *AuthHandler {
	return &AuthHandler{auth: auth, recorder: recorder}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.auth.Register(r.Context(), model.NewUser{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
	})
	h.record("register", err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User registered successfully", user, nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	h.login(w, r, req.Email, req.Password)
}

// LoginForm accepts OAuth2 password-flow form fields; username carries the email.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, apierror.BadRequest("Invalid form body"))
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	fields := map[string]string{}
	if username == "" {
		fields["username"] = "field is required"
	}
	if password == "" {
		fields["password"] = "field is required"
	}
	if len(fields) > 0 {
		writeError(w, r, apierror.Validation("Request validation failed", fields))
		return
	}

	h.login(w, r, username, password)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, email string, password string) {
	pair, err := h.auth.Login(r.Context(), email, password)
	h.record("login", err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Login successful", pair, nil)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	h.record("refresh", err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Token refreshed successfully", pair, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	writeSuccess(w, http.StatusOK, "User information retrieved", user.Public(), nil)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	var req model.ChangePasswordRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.auth.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	h.record("change_password", err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password changed successfully", updated, nil)
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordResetRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	err := h.auth.RequestPasswordReset(r.Context(), req.Email)
	h.record("password_reset_request", err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "If the account exists, a password reset link has been sent", nil, nil)
}

func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordResetConfirmRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.auth.ResetPassword(r.Context(), req.Token, req.NewPassword)
	h.record("password_reset", err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password has been reset", user, nil)
}

func (h *AuthHandler) record(event string, err error) {
	if h.recorder != nil {
		h.recorder.RecordAuth(event, err)
	}
}
