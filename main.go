package main

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"energydash/internal/config"
	"energydash/internal/container"
	"energydash/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	logger := appContainer.Logger

	if err := appContainer.Open(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	if err := appContainer.StartScheduler(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	webApp, err := ui.NewApp(appContainer, ui.Config{
		Port:           appConfig.Server.Port,
		MetricsPath:    appConfig.Metrics.Path,
		MaxUploadBytes: appConfig.Server.MaxUploadBytes,
		ReadTimeout:    appConfig.Server.ReadTimeout,
		WriteTimeout:   appConfig.Server.WriteTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	server := webApp.Server()
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("energy dashboard listening on %s", server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown: %v", err)
	}
	if err := appContainer.Shutdown(shutdownCtx); err != nil {
		logger.Error("container shutdown: %v", err)
	}
}
