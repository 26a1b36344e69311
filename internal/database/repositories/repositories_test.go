package repositories_test

import (
	"context"
	"stickynotes/internal/database/dbtest"
	"stickynotes/internal/database/models"
	"stickynotes/internal/database/repositories"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stores struct {
	users repositories.UserRepository
	notes repositories.NoteRepository
}

func backends(t *testing.T) map[string]func(t *testing.T) stores {
	return map[string]func(t *testing.T) stores{
		"memory": func(t *testing.T) stores {
			return stores{
				users: repositories.NewMemoryUserRepository(),
				notes: repositories.NewMemoryNoteRepository(),
			}
		},
		"postgres": func(t *testing.T) stores {
			db := dbtest.Open(t)
			return stores{
				users: repositories.NewUserRepository(db),
				notes: repositories.NewNoteRepository(db),
			}
		},
	}
}

func mustCreateUser(t *testing.T, repo repositories.UserRepository, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			user := mustCreateUser(t, s.users, "tester")
			assert.NotEqual(t, uuid.Nil, user.ID)
			assert.False(t, user.CreatedAt.IsZero())

			err := s.users.Create(ctx, &models.User{Username: "tester", Email: "dup@example.com", Password: "hash"})
			assert.ErrorIs(t, err, repositories.ErrUsernameTaken)

			byName, err := s.users.GetByUsername(ctx, "tester")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byName.ID)
			assert.Equal(t, "tester@example.com", byName.Email)

			byID, err := s.users.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "tester", byID.Username)

			_, err = s.users.GetByUsername(ctx, "nobody")
			assert.ErrorIs(t, err, repositories.ErrUserNotFound)
			_, err = s.users.GetByID(ctx, uuid.New())
			assert.ErrorIs(t, err, repositories.ErrUserNotFound)

			require.NoError(t, s.users.SetPassword(ctx, user.ID, "new-hash"))
			byID, err = s.users.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "new-hash", byID.Password)
			assert.ErrorIs(t, s.users.SetPassword(ctx, uuid.New(), "x"), repositories.ErrUserNotFound)

			mustCreateUser(t, s.users, "alice")
			users, err := s.users.List(ctx)
			require.NoError(t, err)
			require.Len(t, users, 2)
			assert.Equal(t, "alice", users[0].Username)
			assert.Equal(t, "tester", users[1].Username)
		})
	}
}

func TestNoteRepository(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			owner := mustCreateUser(t, s.users, "owner")
			other := mustCreateUser(t, s.users, "other")

			first := &models.Note{Title: "Test Title", Content: "This is test content.", UserID: owner.ID}
			require.NoError(t, s.notes.Create(ctx, first))
			assert.NotEqual(t, uuid.Nil, first.ID)

			second := &models.Note{Title: "Second", Content: "More.", UserID: owner.ID}
			require.NoError(t, s.notes.Create(ctx, second))
			require.NoError(t, s.notes.Create(ctx, &models.Note{Title: "Theirs", Content: "x", UserID: other.ID}))

			got, err := s.notes.GetByID(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "Test Title", got.Title)
			assert.Equal(t, owner.ID, got.UserID)

			list, err := s.notes.GetAllByUser(ctx, owner.ID)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, first.ID, list[0].ID)
			assert.Equal(t, second.ID, list[1].ID)

			empty, err := s.notes.GetAllByUser(ctx, uuid.New())
			require.NoError(t, err)
			assert.Empty(t, empty)

			first.Title = "Updated Title"
			first.Content = "Updated content."
			require.NoError(t, s.notes.Update(ctx, first))
			got, err = s.notes.GetByID(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "Updated Title", got.Title)
			assert.Equal(t, "Updated content.", got.Content)

			require.NoError(t, s.notes.Delete(ctx, first.ID))
			_, err = s.notes.GetByID(ctx, first.ID)
			assert.ErrorIs(t, err, repositories.ErrNoteNotFound)
			assert.ErrorIs(t, s.notes.Delete(ctx, first.ID), repositories.ErrNoteNotFound)
			assert.ErrorIs(t, s.notes.Update(ctx, first), repositories.ErrNoteNotFound)
		})
	}
}

func TestMemoryNoteRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryNoteRepository()
	note := &models.Note{Title: "Original", Content: "c", UserID: uuid.New()}
	require.NoError(t, repo.Create(ctx, note))

	got, err := repo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	got.Title = "Mutated"

	again, err := repo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Title)
}
