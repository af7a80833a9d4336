// mockcrm serves the simulated CRM backend: the remote wire contract over a
// seeded in-memory store, with configurable latency and random getLeads
// failures for exercising the rollback paths.
package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/xavierca1/seller-console/internal/infra/remote"
)

func main() {
	godotenv.Load()

	store := remote.NewMemory(remote.SeedLeads())
	store.Latency = latencyFromEnv()
	store.FailureRate = failureRateFromEnv()

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Mount("/", remote.Handler(store))

	port := ":" + envOr("MOCKCRM_PORT", "9090")
	log.Printf("mock CRM listening on %s (latency=%s, failure_rate=%.2f)",
		port, store.Latency, store.FailureRate)
	http.ListenAndServe(port, r)
}

func latencyFromEnv() time.Duration {
	ms, err := strconv.Atoi(envOr("MOCKCRM_LATENCY_MS", "300"))
	if err != nil || ms < 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

func failureRateFromEnv() float64 {
	rate, err := strconv.ParseFloat(envOr("MOCKCRM_FAILURE_RATE", "0.05"), 64)
	if err != nil || rate < 0 || rate > 1 {
		return 0.05
	}
	return rate
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
