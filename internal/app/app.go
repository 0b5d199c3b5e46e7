// Package app wires configuration, storage, services and HTTP routes into a
// runnable server.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/metrics"
	"inkwell/internal/middleware"
	"inkwell/internal/repositories"
	"inkwell/internal/seed"
	"inkwell/internal/services"
	"inkwell/pkg/rabbitmq"
)

// App is a fully wired server.
type App struct {
	Fiber   *fiber.App
	DB      *gorm.DB
	Auth    *services.AuthService
	Metrics *metrics.Metrics

	mq     *rabbitmq.Client
	events bool
	log    logrus.FieldLogger
}

// NewApp opens the database, connects to RabbitMQ when configured and builds
// the HTTP app.
func NewApp(cfg *config.Config, log *logrus.Logger) (*App, error) {
	db, err := database.OpenAndMigrate(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	var mq *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mq, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
	} else {
		log.Info("RABBITMQ_URL not set, domain events disabled")
	}

	var events services.EventPublisher
	if mq != nil {
		events = mq
	}
	a := build(cfg, db, mq, events, log)

	if cfg.SeedData {
		seeder := seed.NewSeeder(
			repositories.NewGORMUserRepository(db),
			repositories.NewGORMPostRepository(db),
			repositories.NewGORMCommentRepository(db),
			services.Passwords{Cost: cfg.BcryptCost},
			log,
		)
		if err := seeder.Run(context.Background()); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	return a, nil
}

// NewWithDB builds the HTTP app on an already migrated database. events may
// be nil; no audit consumer is attached.
func NewWithDB(cfg *config.Config, db *gorm.DB, events services.EventPublisher, log logrus.FieldLogger) *App {
	return build(cfg, db, nil, events, log)
}

func build(cfg *config.Config, db *gorm.DB, mq *rabbitmq.Client, events services.EventPublisher, log logrus.FieldLogger) *App {
	m := metrics.NewMetrics(nil)

	if events != nil {
		events = &countingPublisher{next: events, metrics: m}
	}

	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)
	commentRepo := repositories.NewGORMCommentRepository(db)

	passwords := services.Passwords{Cost: cfg.BcryptCost}
	userService := services.NewUserService(userRepo, passwords, events, log)
	postService := services.NewPostService(postRepo, userRepo, events, log)
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo, events, log)
	authService := services.NewAuthService(userRepo, userService, passwords, cfg.JWTSecret, cfg.JWTTTL, log)

	app := fiber.New(fiber.Config{
		AppName:      "inkwell",
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(middleware.Metrics(m))

	a := &App{
		Fiber:   app,
		DB:      db,
		Auth:    authService,
		Metrics: m,
		mq:      mq,
		events:  events != nil,
		log:     log,
	}

	app.Get("/health", a.handleHealth)
	app.Get("/metrics", m.Handler())

	guards := handlers.Guards{
		Required: middleware.AuthRequired(authService),
		Optional: middleware.AuthOptional(authService),
	}

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService, cfg.CookieSecure).RegisterRoutes(apiV1)
	handlers.NewUserHandler(userService).RegisterRoutes(apiV1, guards)
	handlers.NewPostHandler(postService).RegisterRoutes(apiV1, guards)
	handlers.NewCommentHandler(commentService).RegisterRoutes(apiV1, guards)

	return a
}

// StartAuditConsumer logs every domain event read back from the broker. It
// is a no-op when events are disabled.
func (a *App) StartAuditConsumer() error {
	if a.mq == nil {
		return nil
	}
	return a.mq.Consume(rabbitmq.AuditHandler(a.log.WithField("component", "audit"), func(name string) {
		a.Metrics.EventsConsumedTotal.WithLabelValues(name).Inc()
	}))
}

// Close shuts down the HTTP app and releases the broker and database.
func (a *App) Close() error {
	var errs []error
	if err := a.Fiber.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
	}
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := database.Close(a.DB); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	body := fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": "up",
		"events":   "disabled",
	}
	if a.events {
		body["events"] = "enabled"
	}

	sqlDB, err := a.DB.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status = fiber.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "down"
	}

	return c.Status(status).JSON(body)
}

// countingPublisher records the outcome of every publish.
type countingPublisher struct {
	next    services.EventPublisher
	metrics *metrics.Metrics
}

func (p *countingPublisher) Publish(routingKey string, payload map[string]interface{}) error {
	err := p.next.Publish(routingKey, payload)
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.metrics.EventsPublishedTotal.WithLabelValues(routingKey, status).Inc()
	return err
}
