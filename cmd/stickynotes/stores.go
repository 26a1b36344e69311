package main

import (
	"context"
	"errors"
	"stickynotes/internal/database"
	"stickynotes/internal/database/repositories"

	"go.uber.org/zap"
)

var errMemoryDriver = errors.New("this command needs DATABASE_DRIVER=postgres")

type stores struct {
	db    database.Service
	users repositories.UserRepository
	notes repositories.NoteRepository
}

// openStores connects the repositories selected by DATABASE_DRIVER. With
// migrate set, pending migrations are applied first.
func openStores(ctx context.Context, migrate bool) (*stores, error) {
	if cfg.Database.Driver == "memory" {
		zlog.Warn("using in-memory storage, all data is lost on exit")
		return &stores{
			users: repositories.NewMemoryUserRepository(),
			notes: repositories.NewMemoryNoteRepository(),
		}, nil
	}

	if migrate {
		if err := database.MigrateUp(cfg.Database.URL()); err != nil {
			return nil, err
		}
		zlog.Info("database schema is up to date")
	}

	db, err := database.New(ctx, cfg.Database, zlog)
	if err != nil {
		return nil, err
	}
	return &stores{
		db:    db,
		users: repositories.NewUserRepository(db.DB()),
		notes: repositories.NewNoteRepository(db.DB()),
	}, nil
}

func (s *stores) Close() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		zlog.Error("failed to close database", zap.Error(err))
	}
}
