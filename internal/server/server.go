package server

import (
	"backend-driftline/internal/auth"
	"backend-driftline/internal/blob"
	"backend-driftline/internal/config"
	"backend-driftline/internal/feed"
	"backend-driftline/internal/metrics"
	"backend-driftline/internal/profile"
	"backend-driftline/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Blobs    blob.Store
	Feeds    *feed.Registry
	Sessions *session.Registry
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, blobs blob.Store) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    db,
		Redis: redisClient,
		Blobs: blobs,
	}

	authSvc := auth.NewService(cfg.JWTSecret, db)
	profiles := profile.NewRepository(db)
	s.Feeds = feed.NewRegistry(feed.NewService(db), blobs)
	s.Sessions = session.NewRegistry(authSvc, profiles, blobs, redisClient)
	// Signing out drops the viewer's cached timeline along with the session.
	s.Sessions.OnSignOut = s.Feeds.Drop

	registerRoutes(s, authSvc)
	return s
}

func registerRoutes(s *Server, authSvc *auth.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", metrics.Handler())

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	optionalJWT := auth.OptionalJWT(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc)
	session.RegisterRoutes(s.App.Group("/session"), s.Sessions)
	feed.RegisterRoutes(s.App.Group("/feed"), s.Feeds, jwtMiddleware, optionalJWT)
}
