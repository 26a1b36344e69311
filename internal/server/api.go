package server

import (
	"errors"
	"stickynotes/internal/auth"
	"stickynotes/internal/database/dto"
	"stickynotes/internal/forms"
	"stickynotes/internal/notes"
	"time"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tokenLocal = "token"

var noteNotFound = fiber.Map{"error": "note not found"}

func (s *FiberServer) registerAPIRoutes() {
	api := s.App.Group("/api", cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api.Post("/token", s.issueToken)

	api.Use(jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: s.jwtSecret},
		ContextKey: tokenLocal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or missing token"})
		},
	}))

	api.Get("/notes", s.apiListNotes)
	api.Post("/notes", s.apiCreateNote)
	api.Get("/notes/:id", s.apiGetNote)
	api.Put("/notes/:id", s.apiUpdateNote)
	api.Delete("/notes/:id", s.apiDeleteNote)
}

func (s *FiberServer) issueToken(c *fiber.Ctx) error {
	if !s.auth.AllowLogin(c.IP()) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": msgTooManyTries})
	}

	credentials := dto.LoginCredentials{}
	if err := c.BodyParser(&credentials); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	user, err := s.auth.Authenticate(c.UserContext(), credentials.Username, credentials.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": auth.MsgInvalidLogin})
	}
	if err != nil {
		return err
	}

	expires := time.Now().Add(s.cfg.Security.JWTExpiration)
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"iat":      time.Now().Unix(),
		"exp":      expires.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return err
	}

	s.log.Info("issued api token", zap.String("user_id", user.ID.String()))
	return c.JSON(fiber.Map{
		"token":      signed,
		"expires_at": expires.UTC().Format(time.RFC3339),
	})
}

// requester returns the user id carried in the verified bearer token.
func requester(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals(tokenLocal).(*jwt.Token)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return id, nil
}

func (s *FiberServer) apiListNotes(c *fiber.Ctx) error {
	userID, err := requester(c)
	if err != nil {
		return err
	}
	list, err := s.notes.List(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"notes": list})
}

func (s *FiberServer) apiCreateNote(c *fiber.Ctx) error {
	userID, err := requester(c)
	if err != nil {
		return err
	}
	var form dto.NoteForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	note, outcome, err := s.notes.Create(c.UserContext(), userID, form)
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": verr.Fields})
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"note": note, "message": outcome.Text})
}

func (s *FiberServer) apiGetNote(c *fiber.Ctx) error {
	userID, err := requester(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(noteNotFound)
	}

	note, err := s.notes.Read(c.UserContext(), userID, id)
	if notes.IsDenied(err) {
		return c.Status(fiber.StatusNotFound).JSON(noteNotFound)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"note": note})
}

func (s *FiberServer) apiUpdateNote(c *fiber.Ctx) error {
	userID, err := requester(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(noteNotFound)
	}
	var form dto.NoteForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	note, outcome, err := s.notes.Update(c.UserContext(), userID, id, form)
	var verr *forms.ValidationError
	switch {
	case notes.IsDenied(err):
		return c.Status(fiber.StatusNotFound).JSON(noteNotFound)
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": verr.Fields})
	case err != nil:
		return err
	}
	return c.JSON(fiber.Map{"note": note, "message": outcome.Text})
}

func (s *FiberServer) apiDeleteNote(c *fiber.Ctx) error {
	userID, err := requester(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(noteNotFound)
	}

	outcome, err := s.notes.Delete(c.UserContext(), userID, id)
	if notes.IsDenied(err) {
		return c.Status(fiber.StatusNotFound).JSON(noteNotFound)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": outcome.Text})
}
