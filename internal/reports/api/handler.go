package reports_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"flora-commerce/internal/auth"
	"flora-commerce/internal/logger"
	"flora-commerce/internal/reports"
	"flora-commerce/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	ReportService *reports.Service
	Logger        *logger.Logger
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/sales", h.Sales)
		r.Get("/top-products", h.TopProducts)
		r.Get("/delivery-status", h.DeliveryStatus)
	})
}

// parseRange reads start/end query params as YYYY-MM-DD. The end bound is
// exclusive, shifted one day forward so the named end date is included.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date, expected YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date, expected YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date is before start date")
	}
	return start, end.AddDate(0, 0, 1), nil
}

func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.ReportService.GetSalesReport(r.Context(), start, end)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SalesReport: %v", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
	}

	products, err := h.ReportService.GetTopProducts(r.Context(), start, end, limit)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("TopProducts: %v", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) DeliveryStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.ReportService.GetDeliveryStatusCounts(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeliveryStatus: %v", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, counts)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(utils.Envelope(data)); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}
