package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mpelletier/facturio/internal/session"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("admin", "admin")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]string{
		"username": "admin",
		"password": "admin",
	})
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "admin", resp["username"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	require.Equal(t, session.CookieName, ck.Name)
	require.True(t, ck.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	uid, ok := env.Sessions.ParseToken(ck.Value)
	require.True(t, ok)
	require.NotZero(t, uid)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("admin", "admin")

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	err := env.Auth.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
	require.Equal(t, "invalid credentials", he.Message)
}

func TestLoginUnknownUserSameRejection(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("admin", "admin")

	_, cWrong := env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	errWrong := env.Auth.Login(cWrong)

	_, cUnknown := env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]string{
		"username": "nobody",
		"password": "admin",
	})
	errUnknown := env.Auth.Login(cUnknown)

	// No distinction between unknown user and wrong password.
	require.Equal(t, errWrong, errUnknown)
}

func TestLogOutClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/logout", nil)
	require.NoError(t, env.Auth.LogOut(c))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, session.CookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}
