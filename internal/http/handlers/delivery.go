package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
)

// DeliveryHandler serves delivery reads, transitions and assignment.
type DeliveryHandler struct {
	lifecycle  lifecycleUsecase
	assignment assignmentUsecase
	intake     intakeUsecase
	logger     logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, lc lifecycleUsecase, am assignmentUsecase, in intakeUsecase) *DeliveryHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &DeliveryHandler{lifecycle: lc, assignment: am, intake: in, logger: logger}
}

// Create handles POST /deliveries.
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d := req.toModel()
	if err := h.intake.Create(r.Context(), d); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/deliveries/"+url.PathEscape(d.Reference))
	writeJSON(h.logger, w, r, http.StatusCreated, deliveryToResponse(*d))
}

// List handles GET /deliveries?status=&driver_id=&limit=&offset=.
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	var f domain.DeliveryFilter
	var err error
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.DeliveryStatus(s)
		f.Status = &st
	}
	if f.DriverID, err = queryInt64(r, "driver_id"); err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	if f.Offset, err = queryInt(r, "offset"); err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	list, err := h.lifecycle.List(r.Context(), f)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveriesToResponse(list))
}

// Get handles GET /deliveries/{ref}.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.lifecycle.GetDelivery(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}

// History handles GET /deliveries/{ref}/history.
func (h *DeliveryHandler) History(w http.ResponseWriter, r *http.Request) {
	events, err := h.lifecycle.GetHistory(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, eventsToResponse(events))
}

// Transition handles POST /deliveries/{ref}/transition.
func (h *DeliveryHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthenticated", "missing caller")
		return
	}
	var req transitionRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.lifecycle.Transition(r.Context(), chi.URLParam(r, "ref"), domain.DeliveryStatus(req.Status), actor, req.Reason)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}

// Assign handles POST /deliveries/{ref}/assign.
func (h *DeliveryHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthenticated", "missing caller")
		return
	}
	var req assignRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.assignment.AssignManually(r.Context(), chi.URLParam(r, "ref"), req.DriverID, actor)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}

// AutoAssign handles POST /assignments/auto.
func (h *DeliveryHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	res, err := h.assignment.AutoAssign(r.Context())
	if err != nil {
		h.logger.Warn("auto-assign interrupted",
			logx.Int("assigned", len(res.Assigned)),
			logx.Any("error", err),
		)
	}
	writeJSON(h.logger, w, r, http.StatusOK, autoAssignToResponse(res))
}
