package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"systems-api/internal/shared/response"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
}

// Pinger is satisfied by *database.DB; other clients are wrapped in PingFunc.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a ping function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

type HealthHandler struct {
	db    Pinger
	redis Pinger
}

// NewHealthHandler takes a nil redis when Redis is disabled.
func NewHealthHandler(db Pinger, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Database:  "disconnected",
		Redis:     "disabled",
	}

	if err := h.db.PingContext(ctx); err == nil {
		resp.Database = "connected"
	} else {
		logger.Warn("Database ping failed", "error", err)
		resp.Status = "degraded"
	}

	if h.redis != nil {
		if err := h.redis.PingContext(ctx); err == nil {
			resp.Redis = "connected"
		} else {
			logger.Warn("Redis ping failed", "error", err)
			resp.Redis = "disconnected"
		}
	}

	response.Success(w, http.StatusOK, resp)
}
