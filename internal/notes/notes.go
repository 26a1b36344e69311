// Package notes implements the note board: per-owner listing and the
// ownership-checked create, read, update and delete operations.
package notes

import (
	"context"
	"errors"
	"fmt"
	"stickynotes/internal/database/dto"
	"stickynotes/internal/database/models"
	"stickynotes/internal/database/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("note not found")
	ErrForbidden = errors.New("note belongs to another user")
)

// IsDenied reports whether err is one of the access failures that are shown
// to the user as a permission error.
func IsDenied(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden)
}

type Service struct {
	repo repositories.NoteRepository
	log  *zap.Logger
}

func NewService(repo repositories.NoteRepository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns the requester's notes in store order.
func (s *Service) List(ctx context.Context, requester uuid.UUID) ([]models.Note, error) {
	notes, err := s.repo.GetAllByUser(ctx, requester)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Create validates form and stores a note owned by requester. Invalid input
// returns a *forms.ValidationError and nothing is stored.
func (s *Service) Create(ctx context.Context, requester uuid.UUID, form dto.NoteForm) (*models.Note, Outcome, error) {
	form, err := Clean(form)
	if err != nil {
		return nil, Outcome{}, err
	}

	note := &models.Note{
		Title:   form.Title,
		Content: form.Content,
		UserID:  requester,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, Outcome{}, fmt.Errorf("create note: %w", err)
	}

	s.log.Info("note created", zap.String("note_id", note.ID.String()), zap.String("user_id", requester.String()))
	return note, created(note.Title), nil
}

// Read returns the note when requester owns it.
func (s *Service) Read(ctx context.Context, requester, id uuid.UUID) (*models.Note, error) {
	return s.owned(ctx, requester, id)
}

// Update overwrites title and content of a note requester owns. Ownership is
// checked before the form is validated.
func (s *Service) Update(ctx context.Context, requester, id uuid.UUID, form dto.NoteForm) (*models.Note, Outcome, error) {
	note, err := s.owned(ctx, requester, id)
	if err != nil {
		return nil, Outcome{}, err
	}

	form, err = Clean(form)
	if err != nil {
		return nil, Outcome{}, err
	}

	note.Title = form.Title
	note.Content = form.Content
	// Only the owner gets here, so this never changes the owner.
	note.UserID = requester

	if err := s.repo.Update(ctx, note); err != nil {
		if errors.Is(err, repositories.ErrNoteNotFound) {
			return nil, Outcome{}, ErrNotFound
		}
		return nil, Outcome{}, fmt.Errorf("update note: %w", err)
	}

	s.log.Info("note updated", zap.String("note_id", note.ID.String()), zap.String("user_id", requester.String()))
	return note, updated(note.Title), nil
}

// Delete removes a note requester owns. Deleting it again reports
// ErrNotFound.
func (s *Service) Delete(ctx context.Context, requester, id uuid.UUID) (Outcome, error) {
	note, err := s.owned(ctx, requester, id)
	if err != nil {
		return Outcome{}, err
	}

	if err := s.repo.Delete(ctx, note.ID); err != nil {
		if errors.Is(err, repositories.ErrNoteNotFound) {
			return Outcome{}, ErrNotFound
		}
		return Outcome{}, fmt.Errorf("delete note: %w", err)
	}

	s.log.Info("note deleted", zap.String("note_id", note.ID.String()), zap.String("user_id", requester.String()))
	return deleted(note.Title), nil
}

// owned fetches the note first and compares owners second.
func (s *Service) owned(ctx context.Context, requester, id uuid.UUID) (*models.Note, error) {
	note, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNoteNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	if !note.OwnedBy(requester) {
		s.log.Warn("note access denied",
			zap.String("note_id", id.String()),
			zap.String("user_id", requester.String()))
		return nil, ErrForbidden
	}
	return note, nil
}
