package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"goanalytics/internal"
	"goanalytics/internal/config"
	"goanalytics/internal/container"
	"goanalytics/ui"
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

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))
	gin.SetMode(appConfig.Server.GinMode)

	c, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create container: %v", err)
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 60*time.Second)
	err = c.InitWorkbench(initCtx)
	cancelInit()
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	server := ui.NewServer(c.Workbench, c.SSEHub, c.Permission, logger)

	go func() {
		if err := server.Start(":" + appConfig.Server.Port); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("[Main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("[Main] server shutdown: %v", err)
	}
	if err := c.Shutdown(shutdownCtx); err != nil {
		logger.Warn("[Main] container shutdown: %v", err)
	}
}
