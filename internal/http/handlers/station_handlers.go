package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"evolt/internal/http/middleware"
	"evolt/internal/models"
	"evolt/internal/service"
)

// StationHandlers serves the /api/stations endpoints.
type StationHandlers struct {
	stations *service.StationService
	logger   *zap.Logger
}

// NewStationHandlers returns handler set.
func NewStationHandlers(stations *service.StationService, logger *zap.Logger) *StationHandlers {
	return &StationHandlers{stations: stations, logger: logger}
}

// Create handles POST /api/stations.
func (h *StationHandlers) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authorization")
		return
	}

	var input models.StationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	station, err := h.stations.Create(r.Context(), input, actor.ID)
	if err != nil {
		h.writeStationError(w, err, "Error creating station")
		return
	}

	writeJSON(w, http.StatusCreated, station)
}

// List handles GET /api/stations with optional status/connectorType/minPower
// query filters.
func (h *StationHandlers) List(w http.ResponseWriter, r *http.Request) {
	filters := models.StationFilters{
		Status:        r.URL.Query().Get("status"),
		ConnectorType: r.URL.Query().Get("connectorType"),
	}
	if raw := r.URL.Query().Get("minPower"); raw != "" {
		minPower, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "minPower must be a number")
			return
		}
		filters.MinPower = &minPower
	}

	var viewer *service.Actor
	if actor, ok := actorFromContext(r); ok {
		viewer = &actor
	}

	items, err := h.stations.List(r.Context(), filters, viewer)
	if err != nil {
		h.logger.Error("list stations failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching stations")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /api/stations/{id}.
func (h *StationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := stationID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Station not found")
		return
	}

	station, err := h.stations.GetByID(r.Context(), id)
	if err != nil {
		h.writeStationError(w, err, "Error fetching station")
		return
	}

	writeJSON(w, http.StatusOK, station)
}

// Update handles PUT /api/stations/{id}.
func (h *StationHandlers) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authorization")
		return
	}

	id, ok := stationID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Station not found")
		return
	}

	var input models.StationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	station, err := h.stations.Update(r.Context(), id, input, actor)
	if err != nil {
		h.writeStationError(w, err, "Error updating station")
		return
	}

	writeJSON(w, http.StatusOK, station)
}

// Delete handles DELETE /api/stations/{id}.
func (h *StationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authorization")
		return
	}

	id, ok := stationID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Station not found")
		return
	}

	if err := h.stations.Delete(r.Context(), id, actor); err != nil {
		h.writeStationError(w, err, "Error deleting station")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Station deleted successfully"})
}

func (h *StationHandlers) writeStationError(w http.ResponseWriter, err error, fallback string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, service.ErrStationNotFound):
		writeError(w, http.StatusNotFound, "Station not found")
	case errors.Is(err, service.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "Access denied. You do not have permission to modify this station.")
	default:
		h.logger.Error("station operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func actorFromContext(r *http.Request) (service.Actor, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ID: claims.UserID, Role: models.Role(claims.Role)}, true
}

func stationID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
