package delivery_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"flora-commerce/internal/auth"
	"flora-commerce/internal/delivery"
	"flora-commerce/internal/errs"
	"flora-commerce/internal/logger"
	"flora-commerce/internal/models"
	"flora-commerce/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	DeliveryService *delivery.DeliveryService
	Logger          *logger.Logger
}

// RegisterRoutes mounts all delivery routes. Tracking lookups stay public so
// recipients can follow a shared link; everything else requires the caller
// middleware, admin routes on top of that.
func (h *Handler) RegisterRoutes(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Route("/deliveries", func(r chi.Router) {
		r.Get("/tracking/{trackingNumber}", h.GetByTracking)
		r.Get("/tracking/{trackingNumber}/qr", h.TrackingQR)

		r.With(authn).Get("/my", h.ListMyDeliveries)

		r.Group(func(r chi.Router) {
			r.Use(authn, auth.RequireAdmin)
			r.Post("/", h.Create)
			r.Put("/tracking/{trackingNumber}/status", h.UpdateStatus)
			r.Put("/tracking/{trackingNumber}/assign-driver", h.AssignDriver)
			r.Post("/tracking/{trackingNumber}/proof", h.AttachProof)
			r.Get("/all", h.ListAll)
			r.Get("/order/{orderId}", h.ListByOrder)
			r.Get("/event/{eventId}", h.ListByEvent)
			r.Get("/status/{status}", h.ListByStatus)
			r.Get("/date/{date}", h.ListByScheduledDate)
			r.Get("/date-range", h.ListByScheduledDateRange)
			r.Get("/created/{date}", h.ListByCreatedDate)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.DeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.DeliveryService.Create(req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateDelivery: %v", err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetByTracking(w http.ResponseWriter, r *http.Request) {
	found, err := h.DeliveryService.GetByTracking(chi.URLParam(r, "trackingNumber"))
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, found)
}

func (h *Handler) TrackingQR(w http.ResponseWriter, r *http.Request) {
	found, err := h.DeliveryService.GetByTracking(chi.URLParam(r, "trackingNumber"))
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	png, err := delivery.TrackingQR(found)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("TrackingQR: %s: %v", found.TrackingNumber, err))
		http.Error(w, "failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to write QR response: %v", err))
	}
}

func (h *Handler) ListMyDeliveries(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	deliveries, err := h.DeliveryService.GetByUser(ident.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListMyDeliveries: user=%d: %v", ident.UserID, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, deliveries)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	trackingNumber := chi.URLParam(r, "trackingNumber")
	status := models.DeliveryStatus(r.URL.Query().Get("status"))
	if !status.Valid() {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	updated, err := h.DeliveryService.UpdateStatus(trackingNumber, status)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateDeliveryStatus: %s status=%s: %v", trackingNumber, status, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) AssignDriver(w http.ResponseWriter, r *http.Request) {
	trackingNumber := chi.URLParam(r, "trackingNumber")
	q := r.URL.Query()
	driverName := q.Get("driverName")
	if driverName == "" {
		http.Error(w, "driverName is required", http.StatusBadRequest)
		return
	}

	updated, err := h.DeliveryService.AssignDriver(trackingNumber, driverName, q.Get("driverPhone"), q.Get("vehicleNumber"))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AssignDriver: %s driver=%s: %v", trackingNumber, driverName, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) AttachProof(w http.ResponseWriter, r *http.Request) {
	trackingNumber := chi.URLParam(r, "trackingNumber")

	var req models.ProofOfDeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.DeliveryService.AttachProof(trackingNumber, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AttachProof: %s: %v", trackingNumber, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	deliveries, err := h.DeliveryService.GetAll()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAllDeliveries: %v", err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, deliveries)
}

func (h *Handler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	deliveries, err := h.DeliveryService.GetByOrder(orderID)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, deliveries)
}

func (h *Handler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	deliveries, err := h.DeliveryService.GetByEvent(eventID)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, deliveries)
}

func (h *Handler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.DeliveryStatus(chi.URLParam(r, "status"))
	if !status.Valid() {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	deliveries, err := h.DeliveryService.GetByStatus(status)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, deliveries)
}

func (h *Handler) ListByScheduledDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	deliveries, err := h.DeliveryService.GetByScheduledDate(date)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, deliveries)
}

func (h *Handler) ListByScheduledDateRange(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "invalid start date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, "invalid end date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		http.Error(w, "end date is before start date", http.StatusBadRequest)
		return
	}

	deliveries, err := h.DeliveryService.GetByScheduledDateRange(start, end)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, deliveries)
}

func (h *Handler) ListByCreatedDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	deliveries, err := h.DeliveryService.GetByCreatedDate(date)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, deliveries)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(utils.Envelope(data)); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}
