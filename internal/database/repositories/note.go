package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"stickynotes/internal/database/models"

	"github.com/google/uuid"
)

var ErrNoteNotFound = errors.New("note not found")

// NoteRepository persists notes. It does not check ownership; callers
// compare Note.UserID with the requester.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type noteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (title, content, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, note.Title, note.Content, note.UserID).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating note: %w", err)
	}
	return nil
}

func (r *noteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	note := models.Note{}
	query := `SELECT id, title, content, user_id, created_at, updated_at FROM notes WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&note.ID, &note.Title, &note.Content, &note.UserID, &note.CreatedAt, &note.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting note: %w", err)
	}
	return &note, nil
}

func (r *noteRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]models.Note, error) {
	query := `SELECT id, title, content, user_id, created_at, updated_at FROM notes WHERE user_id = $1 ORDER BY created_at, id`
	result, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying notes: %w", err)
	}
	defer result.Close()

	notes := []models.Note{}
	for result.Next() {
		var note models.Note
		err := result.Scan(
			&note.ID,
			&note.Title,
			&note.Content,
			&note.UserID,
			&note.CreatedAt,
			&note.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning note: %w", err)
		}
		notes = append(notes, note)
	}
	if err = result.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}
	return notes, nil
}

func (r *noteRepository) Update(ctx context.Context, note *models.Note) error {
	query := `
		UPDATE notes
		SET title = $1, content = $2, user_id = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, note.Title, note.Content, note.UserID, note.ID).Scan(&note.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoteNotFound
	}
	if err != nil {
		return fmt.Errorf("error updating note: %w", err)
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM notes WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error deleting note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}
