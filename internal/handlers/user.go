package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"idcards/internal/config"
	"idcards/internal/middleware"
	"idcards/internal/model"
	"idcards/internal/service"

	"go.uber.org/zap"
)

type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type userView struct {
	ID    string `json:"id"`
	Login string `json:"login"`
}

func decodeCredentials(r *http.Request) (credentials, error) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		return c, fmt.Errorf("%w: invalid request body", service.ErrBadInput)
	}
	return c, nil
}

// Register регистрация пользователя
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		writeError(w, h.Logger, "Register", err)
		return
	}
	user, err := h.UserService.Register(r.Context(), c.Login, c.Password)
	if err != nil {
		writeError(w, h.Logger, "Register", err)
		return
	}
	h.Logger.Infow("Register: user created", "user_id", user.ID)
	h.respondWithToken(w, http.StatusCreated, user)
}

// Login вход пользователя
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		writeError(w, h.Logger, "Login", err)
		return
	}
	user, err := h.UserService.Login(r.Context(), c.Login, c.Password)
	if err != nil {
		writeError(w, h.Logger, "Login", err)
		return
	}
	h.respondWithToken(w, http.StatusOK, user)
}

func (h *UserHandler) respondWithToken(w http.ResponseWriter, status int, user *model.User) {
	token, err := middleware.NewToken(user.ID, h.Config.AuthSecret, h.Config.TokenTTL)
	if err != nil {
		writeError(w, h.Logger, "token", err)
		return
	}
	writeJSON(w, status, authResponse{
		Token: token,
		User:  userView{ID: user.ID, Login: user.Login},
	})
}
