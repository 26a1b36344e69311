// Package auth registers users, verifies credentials and keeps the logged-in
// user in a Fiber session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"stickynotes/internal/database/dto"
	"stickynotes/internal/database/models"
	"stickynotes/internal/database/repositories"
	"stickynotes/internal/forms"
	"stickynotes/internal/utils"
	"sync"

	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// MsgInvalidLogin is shown by the login form for any credential failure.
const MsgInvalidLogin = "Please enter a correct username and password. Note that both fields may be case-sensitive."

type Service struct {
	users   repositories.UserRepository
	store   *session.Store
	limiter *LoginLimiter
	log     *zap.Logger
}

// NewService wires the identity service. store and limiter may be nil for
// callers that never handle HTTP requests, such as the CLI.
func NewService(users repositories.UserRepository, store *session.Store, limiter *LoginLimiter, log *zap.Logger) *Service {
	return &Service{
		users:   users,
		store:   store,
		limiter: limiter,
		log:     log,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnHash spends a bcrypt comparison so unknown usernames take as long as
// wrong passwords.
func burnHash(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = utils.HashPassword("not-a-real-password")
	})
	utils.CheckPasswordHash(password, dummyHash)
}

// Authenticate returns the user for a matching username and password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrUserNotFound) {
		burnHash(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// AllowLogin reports whether another login attempt from key is permitted.
func (s *Service) AllowLogin(key string) bool {
	if s.limiter == nil {
		return true
	}
	return s.limiter.Allow(key)
}

// CreateUser registers a regular user from the signup form. Invalid input
// returns a *forms.ValidationError.
func (s *Service) CreateUser(ctx context.Context, form dto.SignupForm) (*models.User, error) {
	return s.register(ctx, form, false)
}

// CreateStaffUser registers a user with the staff flag set.
func (s *Service) CreateStaffUser(ctx context.Context, form dto.SignupForm) (*models.User, error) {
	return s.register(ctx, form, true)
}

func (s *Service) register(ctx context.Context, form dto.SignupForm, staff bool) (*models.User, error) {
	form, v := cleanSignup(form)
	if !v.Has("username") {
		_, err := s.users.GetByUsername(ctx, form.Username)
		switch {
		case err == nil:
			v.Add("username", MsgUsernameTaken)
		case !errors.Is(err, repositories.ErrUserNotFound):
			return nil, fmt.Errorf("check username: %w", err)
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(form.Password1)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
		Password: hash,
		IsStaff:  staff,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			taken := forms.New()
			taken.Add("username", MsgUsernameTaken)
			return nil, taken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("username", user.Username), zap.Bool("staff", staff))
	return user, nil
}

// SetPassword replaces a user's password after running the password rules.
func (s *Service) SetPassword(ctx context.Context, username, password string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	v := forms.New()
	validatePassword(v, "password", user.Username, password)
	if err := v.Err(); err != nil {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		return err
	}
	s.log.Info("password changed", zap.String("user_id", user.ID.String()))
	return nil
}

// Users lists every registered user.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}
