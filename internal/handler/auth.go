package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/booklist-service/internal/service"
)

// AuthHandler serves register, login and logout.
type AuthHandler struct {
	Auth *service.AuthService
	Log  logrus.FieldLogger
}

func NewAuthHandler(auth *service.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Auth: auth, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates an identity. The email is stored exactly as sent and
// is not required to be RFC-formatted. No token is issued; the client
// logs in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	msg, err := h.Auth.Register(c.Request().Context(), strings.TrimSpace(req.Name), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "User already exists"})
		}
		h.Log.WithError(err).Error("register failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	tok, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"token": tok.Token})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User not found"})
	case errors.Is(err, service.ErrInvalidCredential):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid credentials"})
	default:
		h.Log.WithError(err).Error("login failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Login failed"})
	}
}

// Logout only acknowledges. Tokens stay valid until they expire.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": h.Auth.Logout()})
}
