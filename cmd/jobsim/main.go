// Command jobsim serves a simulated analysis service for local development.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"goanalytics/internal"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	addr := flag.String("addr", ":8000", "listen address")
	latency := flag.Duration("latency", 3*time.Second, "simulated job duration")
	failRate := flag.Float64("fail-rate", 0.1, "share of jobs that fail")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed for fabricated results")
	flag.Parse()

	logger := internal.NewDefaultLogger()
	sim := NewSimulator(SimulatorConfig{
		Latency:  *latency,
		FailRate: *failRate,
		Token:    os.Getenv("ANALYTICS_API_TOKEN"),
		Seed:     *seed,
	}, logger)

	srv := &http.Server{Addr: *addr, Handler: sim, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logger.Info("[JobSim] listening on %s (latency %s, fail rate %.2f)", *addr, *latency, *failRate)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
