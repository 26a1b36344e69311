package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"go.uber.org/zap"
)

const csrfContextKey = "csrf"

func (s *FiberServer) RegisterFiberRoutes() {
	s.App.Get("/health", s.healthHandler)

	// The API authenticates with bearer tokens, so it sits in front of the
	// session and CSRF middleware.
	s.registerAPIRoutes()

	s.App.Use(s.auth.LoadSession())
	if s.cfg.Security.CSRF {
		s.App.Use(csrf.New(csrf.Config{
			KeyLookup:      "form:csrf_token",
			CookieName:     "csrftoken",
			CookieSameSite: "Lax",
			CookieSecure:   s.cfg.Session.CookieSecure,
			CookieHTTPOnly: true,
			Expiration:     s.cfg.Session.Expiration,
			ContextKey:     csrfContextKey,
			Storage:        s.storage,
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/api/")
			},
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				s.log.Warn("csrf check failed", zap.String("path", c.Path()), zap.Error(err))
				return fiber.ErrForbidden
			},
		}))
	}

	authed := s.auth.RequireAuth()

	s.App.Get("/signup/", s.signupForm)
	s.App.Post("/signup/", s.signup)
	s.App.Get("/accounts/login/", s.loginForm)
	s.App.Post("/accounts/login/", s.login)
	s.App.Get("/logout/", authed, s.logout)

	s.App.Get("/", authed, s.listNotes)
	s.App.Get("/note/create/", authed, s.createNoteForm)
	s.App.Post("/note/create/", authed, s.createNote)
	s.App.Get("/note/:id/read/", authed, s.readNote)
	s.App.Get("/note/:id/update/", authed, s.updateNoteForm)
	s.App.Post("/note/:id/update/", authed, s.updateNote)
	s.App.Post("/note/:id/delete/", authed, s.deleteNote)
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	if s.db == nil {
		return c.JSON(map[string]string{
			"status":   "up",
			"database": "memory",
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
	}
	stats := s.db.Health()
	if stats["status"] != "up" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(stats)
	}
	return c.JSON(stats)
}

// errorHandler renders failures that escaped the handlers. The session has
// already been saved by then, so the page is rendered without user data.
func (s *FiberServer) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	message := http.StatusText(code)
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{"error": strings.ToLower(message)})
	}

	c.Status(code)
	if renderErr := c.Render("errors/error", fiber.Map{
		"Title":   message,
		"Code":    code,
		"Message": message,
	}); renderErr != nil {
		s.log.Error("failed to render error page", zap.Error(renderErr))
		return c.Status(code).SendString(message)
	}
	return nil
}
