// Package sessions builds the cookie session store used for logins and
// flash messages.
package sessions

import (
	"context"
	"stickynotes/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

// NewStorage returns Redis-backed storage when configured. A nil storage
// makes the session middleware fall back to its in-memory storage.
func NewStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (fiber.Storage, error) {
	if cfg.Session.Store != "redis" {
		log.Info("using in-memory session storage")
		return nil, nil
	}
	storage, err := NewRedisStorage(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	log.Info("using redis session storage", zap.String("addr", cfg.Redis.Addr))
	return storage, nil
}

// NewStore configures the session cookie. types lists the non-basic values
// that will be kept in sessions.
func NewStore(cfg config.SessionConfig, storage fiber.Storage, types ...interface{}) *session.Store {
	store := session.New(session.Config{
		Expiration:     cfg.Expiration,
		Storage:        storage,
		KeyLookup:      "cookie:" + cfg.CookieName,
		CookiePath:     "/",
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	for _, t := range types {
		store.RegisterType(t)
	}
	return store
}
