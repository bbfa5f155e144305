package handlers

import (
	"net/http"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	users *services.UserService
	log   *logrus.Logger
}

func NewAuthHandler(users *services.UserService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

type createUserRequest struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// CreateUser registers an account. The service owns the field rules.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	u, err := h.users.Create(r.Context(), services.CreateUserInput{
		Email: req.Email, Name: req.Name, Password: req.Password, Role: req.Role,
	})
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}
