package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net/http"
	"stickynotes/internal/auth"
	"stickynotes/internal/config"
	"stickynotes/internal/database"
	"stickynotes/internal/database/repositories"
	"stickynotes/internal/notes"
	"stickynotes/internal/sessions"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// accessLogFormat is one line per request, written to the zap "http" logger.
const accessLogFormat = "${status} ${method} ${path} ${latency} ${ip}\n"

type FiberServer struct {
	*fiber.App

	db        database.Service
	cfg       *config.Config
	log       *zap.Logger
	auth      *auth.Service
	notes     *notes.Service
	limiter   *auth.LoginLimiter
	storage   fiber.Storage
	jwtSecret []byte
}

// Deps are the stores the server is built on.
type Deps struct {
	// DB is nil when the in-memory repositories are used.
	DB    database.Service
	Users repositories.UserRepository
	Notes repositories.NoteRepository
	// Storage backs sessions and CSRF tokens; nil keeps them in memory.
	Storage fiber.Storage
}

func New(cfg *config.Config, log *zap.Logger, deps Deps) (*FiberServer, error) {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, fmt.Errorf("failed to load views: %w", err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")

	secret := []byte(cfg.Security.JWTSecret)
	if len(secret) == 0 {
		secret, err = randomSecret()
		if err != nil {
			return nil, err
		}
		log.Warn("SECURITY_JWT_SECRET is not set, API tokens will not survive a restart")
	}

	store := sessions.NewStore(cfg.Session, deps.Storage, []notes.Outcome{})
	limiter := auth.NewLoginLimiter(cfg.Security.LoginInterval, cfg.Security.LoginBurst)

	server := &FiberServer{
		db:        deps.DB,
		cfg:       cfg,
		log:       log,
		auth:      auth.NewService(deps.Users, store, limiter, log),
		notes:     notes.NewService(deps.Notes, log),
		limiter:   limiter,
		storage:   deps.Storage,
		jwtSecret: secret,
	}
	server.App = fiber.New(fiber.Config{
		ServerHeader: cfg.App.Name,
		AppName:      cfg.App.Name,
		Views:        engine,
		ViewsLayout:  "layouts/base",
		ErrorHandler: server.errorHandler,

		ProxyHeader:             cfg.Server.ProxyHeader,
		EnableTrustedProxyCheck: len(cfg.Server.TrustedProxies) > 0,
		TrustedProxies:          cfg.Server.TrustedProxies,
	})

	server.App.Use(recover.New())
	server.App.Use(favicon.New())
	server.App.Use(logger.New(logger.Config{
		Format:        accessLogFormat,
		Output:        zap.NewStdLog(log.Named("http")).Writer(),
		DisableColors: true,
	}))
	if cfg.App.IsDevelopment() {
		server.App.Use(pprof.New())
	}

	p := fiberprometheus.NewWithRegistry(prometheus.NewRegistry(), cfg.App.Name, "http", "", nil)
	p.RegisterAt(server.App, "/metrics")
	server.App.Use(p.Middleware)

	return server, nil
}

// Close releases what New started. It does not stop a running listener.
func (s *FiberServer) Close() {
	s.limiter.Stop()
}

func randomSecret() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	return []byte(hex.EncodeToString(buf)), nil
}
