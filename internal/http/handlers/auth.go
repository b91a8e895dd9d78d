package handlers

import (
	"net/http"

	"github.com/aTrapDeer/portfolio-backend/internal/apierr"
	"github.com/aTrapDeer/portfolio-backend/internal/http/middleware"
	"github.com/aTrapDeer/portfolio-backend/internal/http/response"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/services"
)

type AuthHandler struct {
	log  *logger.Logger
	auth *services.AuthService
}

func NewAuthHandler(log *logger.Logger, auth *services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), auth: auth}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	sess, err := h.auth.Login(r.Context(), in)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, sess)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r.Context())
	if claims == nil {
		response.Error(w, r, h.log, apierr.Unauthorized("Not authenticated"))
		return
	}
	u, err := h.auth.Me(r.Context(), claims.Subject)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.OK(w, u)
}

// RequestReset answers the same way whether or not the email is known.
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var in services.ResetRequestInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	if err := h.auth.RequestPasswordReset(r.Context(), in); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.Message(w, http.StatusOK, "If that email is registered, an OTP has been sent")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in services.ResetPasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	if err := h.auth.ResetPassword(r.Context(), in); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	response.Message(w, http.StatusOK, "Password has been reset")
}
