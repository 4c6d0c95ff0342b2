package event_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"flora-commerce/internal/auth"
	"flora-commerce/internal/errs"
	"flora-commerce/internal/event"
	"flora-commerce/internal/logger"
	"flora-commerce/internal/models"
	"flora-commerce/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	EventService *event.EventService
	Logger       *logger.Logger
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.ListMyEvents)
		r.Get("/{eventId}", h.GetEvent)
		r.Get("/number/{eventNumber}", h.GetEventByNumber)
		r.Delete("/{eventId}", h.DeleteEvent)

		r.With(auth.RequireAdmin).Get("/all", h.ListAllEvents)
		r.With(auth.RequireAdmin).Get("/pending", h.ListPending)
		r.With(auth.RequireAdmin).Get("/status/{status}", h.ListByStatus)
		r.With(auth.RequireAdmin).Post("/{eventId}/approve", h.Approve)
		r.With(auth.RequireAdmin).Post("/{eventId}/reject", h.Reject)
		r.With(auth.RequireAdmin).Put("/{eventId}/status", h.UpdateStatus)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !req.EventType.Valid() {
		http.Error(w, "invalid event type", http.StatusBadRequest)
		return
	}

	created, err := h.EventService.Create(ident.UserID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: user=%d: %v", ident.UserID, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	events, err := h.EventService.GetUserEvents(ident.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListMyEvents: user=%d: %v", ident.UserID, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, events)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	found, err := h.EventService.GetEvent(eventID)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	if found.UserID != ident.UserID && !ident.IsAdmin() {
		http.Error(w, "unauthorized access", http.StatusForbidden)
		return
	}

	h.writeJSON(w, http.StatusOK, found)
}

func (h *Handler) GetEventByNumber(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	found, err := h.EventService.GetEventByNumber(chi.URLParam(r, "eventNumber"))
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	if found.UserID != ident.UserID && !ident.IsAdmin() {
		http.Error(w, "unauthorized access", http.StatusForbidden)
		return
	}

	h.writeJSON(w, http.StatusOK, found)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	if err := h.EventService.Delete(eventID, ident.UserID, ident.IsAdmin()); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteEvent: event=%d user=%d: %v", eventID, ident.UserID, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAllEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.EventService.GetAllEvents()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAllEvents: %v", err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, events)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	events, err := h.EventService.GetPendingEvents()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListPendingEvents: %v", err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, events)
}

func (h *Handler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.EventStatus(chi.URLParam(r, "status"))
	if !status.Valid() {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	events, err := h.EventService.GetEventsByStatus(status)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, events)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	var req models.ApprovalRequest
	if r.Body != nil {
		// An empty body means approval without notes.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	approved, err := h.EventService.Approve(eventID, ident.UserID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ApproveEvent: event=%d admin=%d: %v", eventID, ident.UserID, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, approved)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	var req models.RejectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.RejectionReason == "" {
		http.Error(w, "rejectionReason is required", http.StatusBadRequest)
		return
	}

	rejected, err := h.EventService.Reject(eventID, ident.UserID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("RejectEvent: event=%d admin=%d: %v", eventID, ident.UserID, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, rejected)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	status := models.EventStatus(r.URL.Query().Get("status"))
	if !status.Valid() {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	updated, err := h.EventService.UpdateStatus(eventID, status)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateEventStatus: event=%d status=%s: %v", eventID, status, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(utils.Envelope(data)); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}
