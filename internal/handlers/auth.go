package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mpelletier/facturio/internal/models"
	"github.com/mpelletier/facturio/internal/session"
)

type AuthHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

// Login verifies the credential and sets the signed session cookie. Unknown
// username and wrong password yield the same rejection.
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if !h.Sessions.VerifyPassword(req.Password, user.PasswordHash) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	c.SetCookie(h.Sessions.NewCookie(h.Sessions.IssueToken(user.ID)))
	return c.JSON(http.StatusOK, map[string]any{
		"id":       user.ID,
		"username": user.Username,
	})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	c.SetCookie(session.ClearedCookie())
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}
