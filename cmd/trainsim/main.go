package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mlstudio/adapters/trainer"
	"mlstudio/internal"
)

// trainsim serves the deterministic simulator over the Training Service
// HTTP contract so the studio can run with TRAINER_BACKEND=http locally.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	port := getEnvOrDefault("TRAINSIM_PORT", "8001")
	latency, err := time.ParseDuration(getEnvOrDefault("TRAINER_SIM_LATENCY", "0s"))
	if err != nil {
		log.Fatalf("invalid TRAINER_SIM_LATENCY: %v", err)
	}

	logger := internal.NewDefaultLogger().With("trainsim")
	sim := trainer.NewSimulator(logger, trainer.WithLatency(latency))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           trainer.NewSimulatorRouter(sim),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("simulated Training Service listening on :%s (latency %s)", port, latency)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown: %v", err)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
