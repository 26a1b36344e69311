package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"stickynotes/internal/database/repositories"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupSessionApp(t *testing.T) (*fiber.App, *Service) {
	t.Helper()
	store := session.New(session.Config{KeyLookup: "cookie:sessionid"})
	s := NewService(repositories.NewMemoryUserRepository(), store, nil, zap.NewNop())
	_, err := s.CreateUser(context.Background(), validSignup())
	require.NoError(t, err)

	app := fiber.New()
	app.Use(s.LoadSession())
	app.Post("/login", func(c *fiber.Ctx) error {
		user, err := s.Authenticate(c.UserContext(), c.FormValue("username"), c.FormValue("password"))
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		if err := s.Login(c, user); err != nil {
			return err
		}
		return c.Redirect("/")
	})
	app.Get("/logout", func(c *fiber.Ctx) error {
		if err := s.Logout(c); err != nil {
			return err
		}
		return c.Redirect(LoginPath)
	})
	app.Get("/", s.RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendString("hello " + CurrentUser(c).Username)
	})
	return app, s
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "sessionid" {
			return cookie
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	app, _ := setupSessionApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/accounts/login/?next=%2F", resp.Header.Get("Location"))
}

func TestLoginLogoutFlow(t *testing.T) {
	app, _ := setupSessionApp(t)

	req := httptest.NewRequest("POST", "/login", strings.NewReader("username=newuser&password=testpassword"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	cookie := sessionCookie(t, resp)

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "hello newuser", string(body))

	req = httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, LoginPath, resp.Header.Get("Location"))

	// The old session id was discarded at logout.
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
}
