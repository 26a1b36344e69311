package repositories

import (
	"context"
	"sort"
	"stickynotes/internal/database/models"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	_ NoteRepository = (*MemoryNoteRepository)(nil)
	_ UserRepository = (*MemoryUserRepository)(nil)
)

// MemoryNoteRepository keeps notes in process memory. Listing returns notes
// in insertion order, matching the created_at ordering of the SQL store.
type MemoryNoteRepository struct {
	mu    sync.RWMutex
	notes map[uuid.UUID]models.Note
	order []uuid.UUID
}

func NewMemoryNoteRepository() *MemoryNoteRepository {
	return &MemoryNoteRepository{
		notes: make(map[uuid.UUID]models.Note),
	}
}

func (r *MemoryNoteRepository) Create(ctx context.Context, note *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	note.ID = uuid.New()
	note.CreatedAt = now
	note.UpdatedAt = now
	r.notes[note.ID] = *note
	r.order = append(r.order, note.ID)
	return nil
}

func (r *MemoryNoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.notes[id]
	if !ok {
		return nil, ErrNoteNotFound
	}
	return &note, nil
}

func (r *MemoryNoteRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := []models.Note{}
	for _, id := range r.order {
		if note := r.notes[id]; note.UserID == userID {
			notes = append(notes, note)
		}
	}
	return notes, nil
}

func (r *MemoryNoteRepository) Update(ctx context.Context, note *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.notes[note.ID]
	if !ok {
		return ErrNoteNotFound
	}
	stored.Title = note.Title
	stored.Content = note.Content
	stored.UserID = note.UserID
	stored.UpdatedAt = time.Now()
	r.notes[note.ID] = stored
	note.CreatedAt = stored.CreatedAt
	note.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notes[id]; !ok {
		return ErrNoteNotFound
	}
	delete(r.notes, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// MemoryUserRepository keeps users in process memory, indexed by id and
// username.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]models.User
	byUsername map[string]uuid.UUID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:      make(map[uuid.UUID]models.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return ErrUsernameTaken
	}
	now := time.Now()
	user.ID = uuid.New()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := r.users[id]
	return &user, nil
}

func (r *MemoryUserRepository) List(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sortUsers(users)
	return users, nil
}

func (r *MemoryUserRepository) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Password = hash
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}

func sortUsers(users []models.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
}
