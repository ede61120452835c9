package health

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"

	"roomline/pkg/breaker"
	httputil "roomline/pkg/http"
	"roomline/pkg/logger"
)

type Response struct {
	Status   string            `json:"status"`
	Database string            `json:"database,omitempty"`
	Circuits map[string]string `json:"circuits,omitempty"`
}

// Handler serves liveness and readiness probes. Readiness pings the
// database; circuit states are reported for observability but never fail
// the probe, an open circuit is a downstream problem, not ours.
type Handler struct {
	mongoClient *mongo.Client
	breakers    *breaker.Registry
	log         *logger.Logger
}

func NewHandler(mongoClient *mongo.Client, breakers *breaker.Registry, log *logger.Logger) *Handler {
	return &Handler{
		mongoClient: mongoClient,
		breakers:    breakers,
		log:         log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, Response{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "error", err)
	}
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.mongoClient.Ping(ctx, nil); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, Response{
			Status:   "unavailable",
			Database: "error",
			Circuits: h.circuitStates(),
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Ready", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, Response{
		Status:   "ready",
		Database: "ok",
		Circuits: h.circuitStates(),
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "error", err)
	}
}

func (h *Handler) circuitStates() map[string]string {
	if h.breakers == nil {
		return nil
	}
	states := h.breakers.States()
	if len(states) == 0 {
		return nil
	}
	out := make(map[string]string, len(states))
	for target, state := range states {
		out[target] = state.String()
	}
	return out
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
