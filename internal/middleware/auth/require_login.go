package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mpelletier/facturio/internal/models"
	"github.com/mpelletier/facturio/internal/session"
)

// Guard gates protected routes behind the session cookie. A missing cookie,
// a forged or expired token, and a token for a since-deleted user all produce
// the same 401, and no handler logic runs before the check.
type Guard struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

func reject() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
}

func (g *Guard) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, ok := g.Sessions.FromRequest(c.Request())
		if !ok {
			return reject()
		}

		var user models.User
		if err := g.DB.First(&user, uid).Error; err != nil {
			return reject()
		}

		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		return next(c)
	}
}

// UserID returns the authenticated user id set by RequireLogin.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get("userID").(uint)
	return id, ok
}
