package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/seller-console/internal/usecase"
)

type HealthHandler struct {
	RabbitMQ  *amqp091.Connection
	Prefstore string
	Loader    *usecase.LoadWorkspaceUseCase
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(rabbitMQ *amqp091.Connection, prefstoreBackend string, loader *usecase.LoadWorkspaceUseCase) *HealthHandler {
	return &HealthHandler{
		RabbitMQ:  rabbitMQ,
		Prefstore: prefstoreBackend,
		Loader:    loader,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	if url := os.Getenv("CRM_API_URL"); url != "" {
		deps["crm_api"] = "configured"
	} else {
		deps["crm_api"] = "embedded"
	}

	if h.RabbitMQ != nil {
		if h.RabbitMQ.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	if h.Prefstore != "" {
		deps["prefstore"] = h.Prefstore
	} else {
		deps["prefstore"] = "memory"
	}

	// Leads are required for readiness; without a seated snapshot the
	// console is up but empty, waiting on a refresh.
	if h.Loader != nil && h.Loader.Ready() {
		deps["workspace"] = "ready"
	} else {
		deps["workspace"] = "unloaded: lead snapshot missing, retry with POST /refresh"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "configured" && v != "not configured" &&
			v != "embedded" && v != "memory" && v != "sqlite" && v != "postgres" &&
			v != "ready" {
			status = "degraded"
			break
		}
	}

	uptime := time.Since(h.StartTime).Round(time.Second).String()

	response := HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       uptime,
		Dependencies: deps,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}
