package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/calebrws/investor-portal/internal/infra/http/middleware"
	"github.com/calebrws/investor-portal/internal/usecase"
)

type AuthHandler struct {
	AuthenticateUC *usecase.AuthenticateUserUseCase
	Sessions       *middleware.SessionManager
	Log            *zap.Logger
}

func NewAuthHandler(uc *usecase.AuthenticateUserUseCase, sessions *middleware.SessionManager, log *zap.Logger) *AuthHandler {
	return &AuthHandler{AuthenticateUC: uc, Sessions: sessions, Log: log}
}

type LoginResponse struct {
	Success      bool    `json:"success"`
	Username     string  `json:"username"`
	IsAdmin      bool    `json:"is_admin"`
	InvestorID   *string `json:"investor_id,omitempty"`
	InvestorName *string `json:"investor_name,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input usecase.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.AuthenticateUC.Execute(r.Context(), input)
	if err != nil {
		middleware.RecordLogin("failure")
		if usecase.IsDomainError(err) {
			writeErrorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.Log.Error("login failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "login failed")
		return
	}

	if err := h.Sessions.SignIn(w, r, user); err != nil {
		h.Log.Error("session save failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "login failed")
		return
	}
	middleware.RecordLogin("success")

	writeJSON(w, http.StatusOK, LoginResponse{
		Success:      true,
		Username:     user.Username,
		IsAdmin:      user.IsAdmin,
		InvestorID:   user.InvestorID,
		InvestorName: user.InvestorName,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Warn("session teardown failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
