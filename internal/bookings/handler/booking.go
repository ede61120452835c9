package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"roomline/internal/bookings/repository"
	"roomline/internal/bookings/service"
	apperrors "roomline/pkg/errors"
	httputil "roomline/pkg/http"
	"roomline/pkg/logger"
	"roomline/pkg/middleware"
	"roomline/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id/window", h.Reschedule)
	router.DELETE("/api/v1/bookings/id/:id", h.Cancel)
	router.GET("/api/v1/bookings/availability", h.CheckAvailability)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity := middleware.IdentityFrom(r.Context())
	if identity == nil {
		h.writeError(w, "Create", apperrors.Unauthorized("Authentication required"))
		return
	}

	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	override := r.URL.Query().Get("override") == "true"

	if err := h.service.Create(r.Context(), identity, &booking, override); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity := middleware.IdentityFrom(r.Context())
	if identity == nil {
		h.writeError(w, "GetByID", apperrors.Unauthorized("Authentication required"))
		return
	}

	booking, err := h.service.GetByID(r.Context(), identity, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity := middleware.IdentityFrom(r.Context())
	if identity == nil {
		h.writeError(w, "List", apperrors.Unauthorized("Authentication required"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	filter := repository.BookingFilter{
		UserID: query.Get("user_id"),
		RoomID: query.Get("room_id"),
		Status: query.Get("status"),
	}

	bookings, total, err := h.service.List(r.Context(), identity, filter, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity := middleware.IdentityFrom(r.Context())
	if identity == nil {
		h.writeError(w, "Reschedule", apperrors.Unauthorized("Authentication required"))
		return
	}

	var window model.BookingWindowUpdate
	if err := json.NewDecoder(r.Body).Decode(&window); err != nil {
		h.writeError(w, "Reschedule", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Reschedule(r.Context(), identity, ps.ByName("id"), &window); err != nil {
		h.writeError(w, "Reschedule", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"id": ps.ByName("id")}); err != nil {
		h.log.Error("failed to write success response", "handler", "Reschedule", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity := middleware.IdentityFrom(r.Context())
	if identity == nil {
		h.writeError(w, "Cancel", apperrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.service.Cancel(r.Context(), identity, ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	roomID := query.Get("room_id")
	if roomID == "" {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput("room_id query parameter is required"))
		return
	}

	start, err := parseTimeParam(query.Get("start_time"), "start_time")
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}
	end, err := parseTimeParam(query.Get("end_time"), "end_time")
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	availability, err := h.service.CheckAvailability(r.Context(), roomID, start, end)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
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
