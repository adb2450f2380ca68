package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"mlstudio/internal"
	"mlstudio/internal/config"
	"mlstudio/internal/container"
	"mlstudio/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))
	gin.SetMode(appConfig.Server.GinMode)

	// Create dependency injection container
	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.Init(context.Background()); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// Initialize web server
	server := ui.NewServer(ui.Config{
		MaxUploadBytes:   appConfig.Server.MaxUploadBytes,
		AllowPrivateURLs: appConfig.Server.AllowPrivateURLs,
	}, appContainer.Studio, appContainer.Training, logger)

	// Start the server
	logger.Info("Starting ML Studio on port %s (trainer: %s)", appConfig.Server.Port, appContainer.Backend.Name())
	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
