package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"roomline/internal/rooms/service"
	apperrors "roomline/pkg/errors"
	httputil "roomline/pkg/http"
	"roomline/pkg/logger"
	"roomline/pkg/middleware"
	"roomline/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RoomHandler struct {
	service service.RoomService
	log     *logger.Logger
}

func NewRoomHandler(service service.RoomService, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		service: service,
		log:     log,
	}
}

func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rooms", h.Create)
	router.GET("/api/v1/rooms", h.GetAll)
	router.GET("/api/v1/rooms/id/:id", h.GetByID)
	router.PATCH("/api/v1/rooms/id/:id/active", h.SetActive)
	router.GET("/api/v1/rooms/id/:id/availability", h.Availability)
	router.GET("/api/v1/rooms/state/:id", h.State)
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity := middleware.IdentityFrom(r.Context())
	if identity == nil {
		h.writeError(w, "Create", apperrors.Unauthorized("Authentication required"))
		return
	}

	var room model.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), identity, &room); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, room); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *RoomHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, room); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *RoomHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	rooms, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, rooms, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *RoomHandler) SetActive(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity := middleware.IdentityFrom(r.Context())
	if identity == nil {
		h.writeError(w, "SetActive", apperrors.Unauthorized("Authentication required"))
		return
	}

	var body struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Active == nil {
		h.writeError(w, "SetActive", apperrors.InvalidInput("Request body must contain an 'active' boolean"))
		return
	}

	if err := h.service.SetActive(r.Context(), identity, ps.ByName("id"), *body.Active); err != nil {
		h.writeError(w, "SetActive", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"id": ps.ByName("id"), "active": *body.Active}); err != nil {
		h.log.Error("failed to write success response", "handler", "SetActive", "error", err)
	}
}

func (h *RoomHandler) State(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	state, err := h.service.State(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "State", err)
		return
	}

	if err := httputil.WriteSuccess(w, state); err != nil {
		h.log.Error("failed to write success response", "handler", "State", "error", err)
	}
}

func (h *RoomHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()

	start, err := parseTimeParam(query.Get("start_time"), "start_time")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	end, err := parseTimeParam(query.Get("end_time"), "end_time")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	availability, err := h.service.Availability(r.Context(), ps.ByName("id"), start, end)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "error", err)
	}
}

func (h *RoomHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func parseTimeParam(value, name string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.InvalidInput(name + " query parameter is required")
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(name + " must be an RFC3339 timestamp")
	}
	return t, nil
}
