package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"inkwell/internal/app"
	"inkwell/internal/config"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := app.NewLogger(cfg.LogLevel)

	server, err := app.NewApp(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize application")
	}

	if err := server.StartAuditConsumer(); err != nil {
		// The API keeps serving without the audit trail.
		log.WithError(err).Error("failed to start RabbitMQ consumer")
	}

	go func() {
		log.WithField("addr", cfg.AppPort).Info("starting server")
		if err := server.Fiber.Listen(cfg.AppPort); err != nil {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	if err := server.Close(); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
	log.Info("server gracefully stopped")
}
