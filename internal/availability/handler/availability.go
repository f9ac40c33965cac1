package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"bookline/internal/availability/service"
	httputil "bookline/pkg/http"
	"bookline/pkg/logger"
)

// AvailabilityHandler exposes the read-only availability API. All
// three endpoints answer from a fresh snapshot; nothing here writes.
type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) requireParams(w http.ResponseWriter, r *http.Request, names ...string) (map[string]string, bool) {
	query := r.URL.Query()
	params := make(map[string]string, len(names))
	for _, name := range names {
		value := strings.TrimSpace(query.Get(name))
		if value == "" {
			if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "'" + name + "' query parameter is required",
			}); err != nil {
				h.log.Error("failed to write bad request response", "error", err)
			}
			return nil, false
		}
		params[name] = value
	}
	return params, true
}

// Check answers the assignment-time question: can anyone take this
// service at this date and time.
func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params, ok := h.requireParams(w, r, "service_id", "date", "time")
	if !ok {
		return
	}

	verdict, err := h.service.Check(r.Context(), params["service_id"], params["date"], params["time"])
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Check", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, verdict); err != nil {
		h.log.Error("failed to write success response", "handler", "Check", "error", err)
	}
}

// Employees lists the staff free for a slot, capability and conflicts
// considered.
func (h *AvailabilityHandler) Employees(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params, ok := h.requireParams(w, r, "service_id", "date", "time")
	if !ok {
		return
	}

	employees, err := h.service.FindEmployees(r.Context(), params["service_id"], params["date"], params["time"])
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Employees", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, employees); err != nil {
		h.log.Error("failed to write success response", "handler", "Employees", "error", err)
	}
}

// Slots suggests the nearest open half-hour slots after from_time.
// from_time is optional; omitted or off-grid values scan the whole
// day.
func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params, ok := h.requireParams(w, r, "service_id", "date")
	if !ok {
		return
	}

	query := r.URL.Query()
	fromClock := strings.TrimSpace(query.Get("from_time"))

	maxResults := 0
	if s := strings.TrimSpace(query.Get("max_results")); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "invalid max_results parameter: " + s,
			}); writeErr != nil {
				h.log.Error("failed to write bad request response", "handler", "Slots", "error", writeErr)
			}
			return
		}
		maxResults = v
	}

	slots, err := h.service.SuggestSlots(r.Context(), params["service_id"], params["date"], fromClock, maxResults)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Slots", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "Slots", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/check", h.Check)
	router.GET("/api/v1/availability/employees", h.Employees)
	router.GET("/api/v1/availability/slots", h.Slots)
}
