package server

import (
	"errors"
	"stickynotes/internal/auth"
	"stickynotes/internal/database/dto"
	"stickynotes/internal/database/models"
	"stickynotes/internal/forms"
	"stickynotes/internal/notes"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgWelcome      = "Welcome to Sticky Notes!"
	msgGetStarted   = "Click '+ Create a Note' in the menu to get started."
	msgLoggedOut    = "You have been successfully logged out."
	msgTooManyTries = "Too many login attempts. Please try again later."
)

func (s *FiberServer) signupForm(c *fiber.Ctx) error {
	return s.render(c, "auth/signup", fiber.Map{
		"Title": "Sign up",
		"Form":  dto.SignupForm{},
	})
}

func (s *FiberServer) signup(c *fiber.Ctx) error {
	var form dto.SignupForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	user, err := s.auth.CreateUser(c.UserContext(), form)
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		form.Password1, form.Password2 = "", ""
		return s.render(c, "auth/signup", fiber.Map{
			"Title":  "Sign up",
			"Form":   form,
			"Errors": verr,
		})
	}
	if err != nil {
		return err
	}

	if err := s.auth.Login(c, user); err != nil {
		return err
	}
	flash(c, notes.Success(msgWelcome), notes.Success(msgGetStarted))
	return c.Redirect("/")
}

func (s *FiberServer) loginForm(c *fiber.Ctx) error {
	return s.render(c, "auth/login", fiber.Map{
		"Title": "Log in",
		"Form":  dto.LoginCredentials{},
		"Next":  c.Query("next"),
	})
}

func (s *FiberServer) login(c *fiber.Ctx) error {
	var form dto.LoginCredentials
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	next := c.FormValue("next")
	page := fiber.Map{
		"Title": "Log in",
		"Form":  dto.LoginCredentials{Username: form.Username},
		"Next":  next,
	}

	if !s.auth.AllowLogin(c.IP()) {
		page["Error"] = msgTooManyTries
		c.Status(fiber.StatusTooManyRequests)
		return s.render(c, "auth/login", page)
	}

	verr := forms.New()
	if form.Username == "" {
		verr.Add("username", forms.MsgRequired)
	}
	if form.Password == "" {
		verr.Add("password", forms.MsgRequired)
	}
	if verr.Err() != nil {
		page["Errors"] = verr
		return s.render(c, "auth/login", page)
	}

	user, err := s.auth.Authenticate(c.UserContext(), form.Username, form.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.log.Info("failed login", zap.String("username", form.Username), zap.String("ip", c.IP()))
		page["Error"] = auth.MsgInvalidLogin
		return s.render(c, "auth/login", page)
	}
	if err != nil {
		return err
	}

	if err := s.auth.Login(c, user); err != nil {
		return err
	}
	return c.Redirect(auth.SafeNext(next))
}

func (s *FiberServer) logout(c *fiber.Ctx) error {
	if err := s.auth.Logout(c); err != nil {
		return err
	}
	flash(c, notes.Success(msgLoggedOut))
	return c.Redirect(auth.LoginPath)
}

func (s *FiberServer) listNotes(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	list, err := s.notes.List(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return s.render(c, "notes/list", fiber.Map{
		"Title": "List of Notes",
		"Notes": list,
	})
}

func (s *FiberServer) createNoteForm(c *fiber.Ctx) error {
	return s.renderNoteForm(c, "Create", "/note/create/", dto.NoteForm{}, nil)
}

func (s *FiberServer) createNote(c *fiber.Ctx) error {
	var form dto.NoteForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	user := auth.CurrentUser(c)
	_, outcome, err := s.notes.Create(c.UserContext(), user.ID, form)
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		return s.renderNoteForm(c, "Create", "/note/create/", form, verr)
	}
	if err != nil {
		return err
	}

	flash(c, outcome)
	return c.Redirect("/")
}

func (s *FiberServer) readNote(c *fiber.Ctx) error {
	note, err := s.ownedNote(c)
	if notes.IsDenied(err) {
		return s.deny(c, notes.OpRead)
	}
	if err != nil {
		return err
	}
	return s.render(c, "notes/read", fiber.Map{
		"Title": note.Title,
		"Note":  note,
	})
}

func (s *FiberServer) updateNoteForm(c *fiber.Ctx) error {
	note, err := s.ownedNote(c)
	if notes.IsDenied(err) {
		return s.deny(c, notes.OpUpdate)
	}
	if err != nil {
		return err
	}
	form := dto.NoteForm{Title: note.Title, Content: note.Content}
	return s.renderNoteForm(c, "Update", updatePath(note.ID), form, nil)
}

func (s *FiberServer) updateNote(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return s.deny(c, notes.OpUpdate)
	}
	var form dto.NoteForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	user := auth.CurrentUser(c)
	_, outcome, err := s.notes.Update(c.UserContext(), user.ID, id, form)
	var verr *forms.ValidationError
	switch {
	case notes.IsDenied(err):
		return s.deny(c, notes.OpUpdate)
	case errors.As(err, &verr):
		return s.renderNoteForm(c, "Update", updatePath(id), form, verr)
	case err != nil:
		return err
	}

	flash(c, outcome)
	return c.Redirect("/")
}

func (s *FiberServer) deleteNote(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return s.deny(c, notes.OpDelete)
	}

	user := auth.CurrentUser(c)
	outcome, err := s.notes.Delete(c.UserContext(), user.ID, id)
	if notes.IsDenied(err) {
		return s.deny(c, notes.OpDelete)
	}
	if err != nil {
		return err
	}

	flash(c, outcome)
	return c.Redirect("/")
}

// ownedNote loads the note named by the :id param for the current user.
// A malformed id is reported as notes.ErrNotFound.
func (s *FiberServer) ownedNote(c *fiber.Ctx) (*models.Note, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, notes.ErrNotFound
	}
	return s.notes.Read(c.UserContext(), auth.CurrentUser(c).ID, id)
}

// deny sends the user back to the board with the same message whether the
// note is missing or belongs to someone else.
func (s *FiberServer) deny(c *fiber.Ctx, op notes.Op) error {
	flash(c, notes.Denied(op))
	return c.Redirect("/")
}

func (s *FiberServer) renderNoteForm(c *fiber.Ctx, heading, action string, form dto.NoteForm, verr *forms.ValidationError) error {
	return s.render(c, "notes/form", fiber.Map{
		"Title":   heading + " Note",
		"Heading": heading,
		"Action":  action,
		"Form":    form,
		"Errors":  verr,
	})
}

func updatePath(id uuid.UUID) string {
	return "/note/" + id.String() + "/update/"
}
