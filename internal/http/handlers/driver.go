package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
)

// DriverHandler serves driver onboarding, availability and location endpoints.
type DriverHandler struct {
	uc     driverUsecase
	logger logx.Logger
}

// NewDriverHandler wires a driver usecase into HTTP handlers.
func NewDriverHandler(logger logx.Logger, uc driverUsecase) *DriverHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &DriverHandler{uc: uc, logger: logger}
}

// GetByID handles GET /drivers/{id}.
func (h *DriverHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthenticated", "missing caller")
		return
	}
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid_input", "invalid id")
		return
	}
	// profiles carry contact data: admins or the driver themselves
	if !actor.IsAdmin() && !actor.IsDriver(id) {
		writeAppError(h.logger, w, r, fmt.Errorf("actor %s cannot read driver %d: %w", actor.ID, id, apperr.ErrUnauthorized))
		return
	}
	d, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, driverToResponse(*d))
}

// List handles GET /drivers.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	list, err := h.uc.List(r.Context(), limit, offset)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, driversToResponse(list))
}

// Create handles POST /drivers.
func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDriverRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d := req.toModel()
	id, err := h.uc.Create(r.Context(), d)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	d.ID = id
	w.Header().Set("Location", "/drivers/"+strconv.FormatInt(id, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, driverToResponse(*d))
}

// Update handles PATCH /drivers/{id}.
func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthenticated", "missing caller")
		return
	}
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid_input", "invalid id")
		return
	}
	var req updateDriverRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if err := h.uc.UpdatePartial(r.Context(), req.toModel(id), actor); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Deactivate handles POST /drivers/{id}/deactivate.
func (h *DriverHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthenticated", "missing caller")
		return
	}
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid_input", "invalid id")
		return
	}
	if err := h.uc.Deactivate(r.Context(), id, actor); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateLocation handles PUT /drivers/{id}/location.
func (h *DriverHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthenticated", "missing caller")
		return
	}
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid_input", "invalid id")
		return
	}
	var req updateLocationRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid_input", "lat and lng are required")
		return
	}
	loc, err := h.uc.UpdateLocation(r.Context(), id, domain.Coordinate{Lat: *req.Lat, Lng: *req.Lng}, actor)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, locationToResponse(loc))
}

// GetLocation handles GET /drivers/{id}/location.
func (h *DriverHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid_input", "invalid id")
		return
	}
	loc, err := h.uc.GetLocation(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, locationToResponse(loc))
}
