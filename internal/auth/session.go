package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"stickynotes/internal/database/models"
	"stickynotes/internal/database/repositories"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoginPath is where RequireAuth sends anonymous visitors.
const LoginPath = "/accounts/login/"

const (
	userIDKey    = "_auth_user_id"
	sessionLocal = "session"
	userLocal    = "user"
)

// LoadSession loads the request's session once, resolves the logged-in user
// and saves the session after the rest of the chain has run. Handlers reach
// both through SessionFrom and CurrentUser.
func (s *Service) LoadSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := s.store.Get(c)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		c.Locals(sessionLocal, sess)

		if raw, ok := sess.Get(userIDKey).(string); ok {
			user, err := s.sessionUser(c.UserContext(), raw)
			switch {
			case err == nil:
				c.Locals(userLocal, user)
			case errors.Is(err, repositories.ErrUserNotFound):
				sess.Delete(userIDKey)
			default:
				return err
			}
		}

		err = c.Next()
		if saveErr := sess.Save(); saveErr != nil {
			s.log.Error("failed to save session", zap.Error(saveErr))
			if err == nil {
				err = saveErr
			}
		}
		c.Locals(sessionLocal, nil)
		return err
	}
}

func (s *Service) sessionUser(ctx context.Context, raw string) (*models.User, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, repositories.ErrUserNotFound
	}
	return s.users.GetByID(ctx, id)
}

// Login binds user to the current session under a fresh session id.
func (s *Service) Login(c *fiber.Ctx, user *models.User) error {
	sess := SessionFrom(c)
	if sess == nil {
		return errors.New("login: no session loaded")
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	sess.Set(userIDKey, user.ID.String())
	c.Locals(userLocal, user)

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()), zap.String("ip", c.IP()))
	return nil
}

// Logout forgets the user and rotates the session id. Other session data,
// such as pending flash messages, survives.
func (s *Service) Logout(c *fiber.Ctx) error {
	sess := SessionFrom(c)
	if sess == nil {
		return errors.New("logout: no session loaded")
	}
	if user := CurrentUser(c); user != nil {
		s.log.Info("user logged out", zap.String("user_id", user.ID.String()))
	}
	sess.Delete(userIDKey)
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.Locals(userLocal, nil)
	return nil
}

// RequireAuth redirects anonymous requests to the login page, keeping the
// original URL in ?next=.
func (s *Service) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) != nil {
			return c.Next()
		}
		return c.Redirect(LoginPath + "?" + url.Values{"next": {c.OriginalURL()}}.Encode())
	}
}

// SessionFrom returns the session loaded by LoadSession, or nil.
func SessionFrom(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(sessionLocal).(*session.Session)
	return sess
}

// CurrentUser returns the logged-in user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocal).(*models.User)
	return user
}

// SafeNext returns next when it is a local path, otherwise "/".
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return "/"
	}
	return next
}
