package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/seller-console/internal/cache"
	"github.com/xavierca1/seller-console/internal/infra/http/handlers"
	"github.com/xavierca1/seller-console/internal/infra/http/middleware"
	"github.com/xavierca1/seller-console/internal/infra/mail"
	"github.com/xavierca1/seller-console/internal/infra/prefstore"
	"github.com/xavierca1/seller-console/internal/infra/queue"
	"github.com/xavierca1/seller-console/internal/infra/remote"
	"github.com/xavierca1/seller-console/internal/usecase"
	"github.com/xavierca1/seller-console/internal/view"
)

func main() {
	godotenv.Load()

	// 1. Remote store: the real CRM when configured, the embedded
	// simulation otherwise (dev/demo runs).
	var store usecase.RemoteStore
	if url := os.Getenv("CRM_API_URL"); url != "" {
		store = remote.NewClient(url, os.Getenv("CRM_API_KEY"))
	} else {
		log.Println("CRM_API_URL not set, running against the embedded store")
		store = remote.NewMemory(remote.SeedLeads())
	}

	// 2. Preference store
	prefBackend := os.Getenv("PREFSTORE_BACKEND")
	prefs, err := prefstore.New(prefBackend, os.Getenv("PREFSTORE_DSN"))
	if err != nil {
		log.Fatal(err)
	}
	defer prefs.Close()

	// 3. Lead events: optional RabbitMQ producer, plus the notification
	// worker when mail is configured too.
	var producer usecase.EventPublisherInterface
	var rabbitConn *amqp.Connection
	if host := os.Getenv("RABBITMQ_HOST"); host != "" {
		rabbitMQ, err := queue.NewRabbitMQ(
			os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
			host, envOr("RABBITMQ_PORT", "5672"),
		)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitMQ.Conn.Close()
		defer rabbitMQ.Ch.Close()

		rabbitConn = rabbitMQ.Conn
		producer = queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

		if mailHost := os.Getenv("MAIL_HOST"); mailHost != "" {
			sender := mail.NewEmailSender(
				mailHost, 587, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
				envOr("MAIL_FROM", "no-reply@seller-console.local"),
			)
			worker := queue.NewWorker(rabbitMQ.Ch, sender, os.Getenv("SALES_INBOX"))
			go worker.Start(queue.QueueName)
		}
	}

	// 4. Cache + engines
	collection := cache.NewStore()
	loader := usecase.NewLoadWorkspaceUseCase(collection, store)
	editor := usecase.NewEditLeadUseCase(collection, store, producer)
	converter := usecase.NewConvertLeadUseCase(collection, store, producer)
	leadView := view.NewLeads(collection, prefs)

	// 5. Initial load. Leads are required; on failure the console starts
	// empty and POST /refresh is the retry affordance.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if out, err := loader.Execute(ctx); err != nil {
		log.Printf("initial load failed: %v (retry with POST /refresh)", err)
	} else {
		log.Printf("workspace ready: %d leads, %d opportunities", out.Leads, out.Opportunities)
	}
	cancel()

	// 6. Handlers
	leadHandler := handlers.NewLeadHandler(leadView, collection, editor, converter, loader)
	oppHandler := handlers.NewOpportunityHandler(collection)
	healthHandler := handlers.NewHealthHandler(rabbitConn, prefBackend, loader)

	// 7. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	}))
	r.Use(middleware.Metrics)

	r.Get("/leads", leadHandler.HandleList)
	r.Put("/leads/view", leadHandler.HandleUpdateView)
	r.Patch("/leads/{leadID}", leadHandler.HandleUpdate)
	r.Post("/leads/{leadID}/undo", leadHandler.HandleUndo)
	r.Post("/leads/{leadID}/convert", leadHandler.HandleConvert)
	r.Get("/opportunities", oppHandler.HandleList)
	r.Post("/refresh", leadHandler.HandleRefresh)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + envOr("PORT", "8080")
	log.Printf("seller console listening on %s", port)
	http.ListenAndServe(port, r)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
